package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dpwhparse/internal"
)

// BuildSummary renders the parse-summary markdown: aggregate counts plus
// per-code occurrence tables for every severity, and the list of skipped
// documents.
func BuildSummary(result BatchResult) string {
	records := result.Records
	withCritical, withErrors, withWarnings := 0, 0, 0
	critCounts := map[string]int{}
	errCounts := map[string]int{}
	warnCounts := map[string]int{}
	infoCounts := map[string]int{}

	for _, rec := range records {
		if rec.CriticalErrors != nil {
			withCritical++
		}
		if rec.Errors != nil {
			withErrors++
		}
		if rec.Warnings != nil {
			withWarnings++
		}
		countCodes(rec.CriticalErrors, critCounts)
		countCodes(rec.Errors, errCounts)
		countCodes(rec.Warnings, warnCounts)
		countCodes(rec.InfoNotes, infoCounts)
	}

	var b strings.Builder
	b.WriteString("# Parse Summary\n\n")
	fmt.Fprintf(&b, "**Total contracts:** %d\n", len(records))
	fmt.Fprintf(&b, "**Documents parsed:** %d\n", result.Parsed)
	fmt.Fprintf(&b, "**Documents skipped:** %d\n", result.Skipped)
	fmt.Fprintf(&b, "**Contracts with CRITICAL errors:** %d\n", withCritical)
	writeCodeTable(&b, "CRITICAL error subtypes", critCounts)
	fmt.Fprintf(&b, "**Contracts with ERRORs:** %d\n", withErrors)
	writeCodeTable(&b, "ERROR subtypes", errCounts)
	fmt.Fprintf(&b, "**Contracts with WARNINGs:** %d\n", withWarnings)
	writeCodeTable(&b, "WARNING subtypes", warnCounts)
	writeCodeTable(&b, "INFO subtypes", infoCounts)
	fmt.Fprintf(&b, "**Clean contracts:** %d\n", cleanCount(records))

	if result.Skipped > 0 {
		b.WriteString("\n## Skipped documents\n\n")
		for _, out := range result.Outcomes {
			if out.Failure != nil {
				fmt.Fprintf(&b, "- %s: %s\n", filepath.Base(out.Doc.Path), *out.Failure)
			}
		}
	}
	return b.String()
}

func WriteSummary(result BatchResult, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte(BuildSummary(result)), 0o644)
}

func countCodes(column *string, counts map[string]int) {
	if column == nil {
		return
	}
	for _, note := range strings.Split(*column, " | ") {
		code, _, ok := strings.Cut(note, ":")
		if !ok || strings.TrimSpace(code) == "" {
			continue
		}
		counts[strings.TrimSpace(code)]++
	}
}

func writeCodeTable(b *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	codes := make([]string, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	fmt.Fprintf(b, "\n## %s\n\n", title)
	b.WriteString("| Code | Count |\n|------|-------|\n")
	for _, code := range codes {
		fmt.Fprintf(b, "| %s | %d |\n", code, counts[code])
	}
	b.WriteString("\n")
}

func cleanCount(records []internal.ContractRecord) int {
	clean := 0
	for _, rec := range records {
		if rec.CriticalErrors == nil && rec.Errors == nil && rec.Warnings == nil {
			clean++
		}
	}
	return clean
}
