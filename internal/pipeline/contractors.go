package pipeline

import (
	"html"
	"regexp"
	"strings"

	"dpwhparse/internal"
	"dpwhparse/internal/util"
)

// The joint-venture separator is a slash, but contractor names may contain
// slashes of their own. The separator is unambiguous only when anchored to
// the closing parenthesis of the preceding ID group, so the split pattern
// is ") /" and never a bare "/".
var (
	jvSeparator = regexp.MustCompile(`\)\s*/\s*`)
	trailingID  = regexp.MustCompile(`\((\d+)\)\s*$`)
)

// SplitContractors parses one raw contractor-list string into ordered
// entries. An entry without a trailing "(ID)" group keeps the whole piece
// as its name and a nil ID. Returns nil for an empty input; the caller
// raises the missing-contractor error.
func SplitContractors(raw string) []internal.ContractorEntry {
	text := util.NormalizeSpaces(html.UnescapeString(raw))
	if text == "" {
		return nil
	}

	pieces := jvSeparator.Split(text, -1)
	// The split eats the closing paren of every piece but the last.
	for i := 0; i < len(pieces)-1; i++ {
		pieces[i] = strings.TrimSpace(pieces[i]) + ")"
	}

	entries := make([]internal.ContractorEntry, 0, len(pieces))
	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		entry := internal.ContractorEntry{Name: piece}
		if m := trailingID.FindStringSubmatchIndex(piece); m != nil {
			entry.ID = util.StringPtr(piece[m[2]:m[3]])
			entry.Name = strings.TrimSpace(piece[:m[0]])
		}
		entry.HasSlash = strings.Contains(entry.Name, "/")
		entries = append(entries, entry)
	}
	return entries
}
