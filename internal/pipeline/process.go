package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"dpwhparse/internal"
	"dpwhparse/internal/anomaly"
	"dpwhparse/internal/config"
)

// DocumentOutcome is the result of processing one document: either its
// records or a single formatted critical note explaining the skip.
type DocumentOutcome struct {
	Doc     internal.DocumentInfo
	Records []internal.ContractRecord
	Failure *string
}

type BatchResult struct {
	Outcomes []DocumentOutcome
	Records  []internal.ContractRecord
	Parsed   int
	Skipped  int
}

// DiscoverDocuments finds scraped table files in dir. Filenames follow
// table_{Office_Name}_{year}_{yyyymmdd}_{hhmmss}.html; files that do not
// fit the convention are reported and ignored. yearFilter of 0 keeps all
// years. Ordering is (year, office) for reproducible batches.
func DiscoverDocuments(dir string, yearFilter int) ([]internal.DocumentInfo, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "table_*.html"))
	if err != nil {
		return nil, err
	}

	docs := make([]internal.DocumentInfo, 0, len(matches))
	for _, path := range matches {
		year, office, ok := parseDocumentName(filepath.Base(path))
		if !ok {
			fmt.Printf("could not extract year/office from filename: %s\n", filepath.Base(path))
			continue
		}
		if yearFilter != 0 && year != yearFilter {
			continue
		}
		docs = append(docs, internal.DocumentInfo{Path: path, Year: year, Office: office})
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Year != docs[j].Year {
			return docs[i].Year < docs[j].Year
		}
		return docs[i].Office < docs[j].Office
	})
	return docs, nil
}

// The timestamp tail is split into date and time parts, so counting from
// the end: [..., year, yyyymmdd, hhmmss]. Everything between the "table"
// prefix and the year is the office name with underscores for spaces.
func parseDocumentName(name string) (year int, office string, ok bool) {
	stem := strings.TrimSuffix(name, ".html")
	if stem == name {
		return 0, "", false
	}
	parts := strings.Split(stem, "_")
	if len(parts) < 4 || parts[0] != "table" {
		return 0, "", false
	}
	yearPart := parts[len(parts)-3]
	if len(yearPart) != 4 {
		return 0, "", false
	}
	parsed, err := strconv.Atoi(yearPart)
	if err != nil {
		return 0, "", false
	}
	office = strings.Join(parts[1:len(parts)-3], " ")
	return parsed, office, true
}

// ProcessBatch runs every document through the parser over a bounded
// worker pool. Documents share no state, so workers only need an index
// each; results land in an indexed slice and the merge preserves
// encounter order. A failed document never stops the batch.
func ProcessBatch(docs []internal.DocumentInfo, cfg config.Config) BatchResult {
	workers := cfg.ParseWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(docs) {
		workers = len(docs)
	}

	outcomes := make([]DocumentOutcome, len(docs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = processDocument(docs[i], cfg)
			}
		}()
	}
	for i := range docs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	result := BatchResult{Outcomes: outcomes}
	for _, out := range outcomes {
		if out.Failure != nil {
			result.Skipped++
			fmt.Printf("skipped %s: %s\n", filepath.Base(out.Doc.Path), *out.Failure)
			continue
		}
		result.Parsed++
		result.Records = append(result.Records, out.Records...)
		fmt.Printf("processed %s (year %d, %s): %d contracts\n", filepath.Base(out.Doc.Path), out.Doc.Year, out.Doc.Office, len(out.Records))
	}
	return result
}

func processDocument(doc internal.DocumentInfo, cfg config.Config) DocumentOutcome {
	out := DocumentOutcome{Doc: doc}

	content, err := os.ReadFile(doc.Path)
	if err != nil {
		note := anomaly.Message(anomaly.UnparseableMarkup, err.Error())
		out.Failure = &note
		return out
	}

	gdoc, err := ParseDocument(content)
	if err != nil {
		note := anomaly.Message(anomaly.UnparseableMarkup, err.Error())
		out.Failure = &note
		return out
	}

	frags := DataFragments(gdoc)
	if len(frags) == 0 {
		note := anomaly.Message(anomaly.NoContractRows)
		out.Failure = &note
		return out
	}

	out.Records = make([]internal.ContractRecord, 0, len(frags))
	for _, frag := range frags {
		out.Records = append(out.Records, AssembleRecord(frag, doc, cfg))
	}
	return out
}

func TraceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
