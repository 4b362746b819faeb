package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dpwhparse/internal"
)

func TestParseDocumentName(t *testing.T) {
	cases := []struct {
		name       string
		filename   string
		wantYear   int
		wantOffice string
		wantOK     bool
	}{
		{name: "central office", filename: "table_Central_Office_2016_20251111_155202.html", wantYear: 2016, wantOffice: "Central Office", wantOK: true},
		{name: "hyphenated region", filename: "table_Region_IV-B_2020_20251111_155202.html", wantYear: 2020, wantOffice: "Region IV-B", wantOK: true},
		{name: "multi word office", filename: "table_National_Capital_Region_2022_20251111_155202.html", wantYear: 2022, wantOffice: "National Capital Region", wantOK: true},
		{name: "no year", filename: "table_Central_Office.html", wantOK: false},
		{name: "wrong prefix", filename: "notes_Central_Office_2016_20251111_155202.html", wantOK: false},
		{name: "not html", filename: "table_Central_Office_2016_20251111_155202.csv", wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			year, office, ok := parseDocumentName(tc.filename)
			if ok != tc.wantOK {
				t.Fatalf("ok=%v want %v", ok, tc.wantOK)
			}
			if !tc.wantOK {
				return
			}
			if year != tc.wantYear || office != tc.wantOffice {
				t.Fatalf("got (%d, %q) want (%d, %q)", year, office, tc.wantYear, tc.wantOffice)
			}
		})
	}
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverDocuments(t *testing.T) {
	tmp := t.TempDir()
	doc := docHTML(contractRow("1.", sampleFields()))
	writeDoc(t, tmp, "table_Region_X_2020_20250101_120000.html", doc)
	writeDoc(t, tmp, "table_Central_Office_2016_20250101_120000.html", doc)
	writeDoc(t, tmp, "table_Bicol_2016_20250101_120000.html", doc)
	writeDoc(t, tmp, "readme.txt", "not a table")

	docs, err := DiscoverDocuments(tmp, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 3 {
		t.Fatalf("len=%d want 3", len(docs))
	}
	// (year, office) ordering.
	if docs[0].Office != "Bicol" || docs[1].Office != "Central Office" || docs[2].Office != "Region X" {
		t.Fatalf("order: %q, %q, %q", docs[0].Office, docs[1].Office, docs[2].Office)
	}

	filtered, err := DiscoverDocuments(tmp, 2016)
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 2 {
		t.Fatalf("filtered len=%d want 2", len(filtered))
	}
	for _, d := range filtered {
		if d.Year != 2016 {
			t.Fatalf("year=%d", d.Year)
		}
	}
}

func TestProcessBatchSkipsEmptyDocument(t *testing.T) {
	tmp := t.TempDir()
	writeDoc(t, tmp, "table_Central_Office_2016_20250101_120000.html",
		docHTML(contractRow("1.", sampleFields()), contractRow("2.", sampleFields())))
	// Valid markup, zero recognizable data fragments.
	writeDoc(t, tmp, "table_Region_X_2020_20250101_120000.html", docHTML(footerRow))

	docs, err := DiscoverDocuments(tmp, 0)
	if err != nil {
		t.Fatal(err)
	}

	result := ProcessBatch(docs, testCfg())
	if result.Parsed != 1 || result.Skipped != 1 {
		t.Fatalf("parsed=%d skipped=%d", result.Parsed, result.Skipped)
	}
	if len(result.Records) != 2 {
		t.Fatalf("records=%d want 2", len(result.Records))
	}

	var failure *string
	for _, out := range result.Outcomes {
		if out.Failure != nil {
			failure = out.Failure
		}
	}
	if failure == nil || !strings.Contains(*failure, "CRIT-051") {
		t.Fatalf("failure=%v", failure)
	}
}

func TestProcessBatchUnreadableFile(t *testing.T) {
	docs := []internal.DocumentInfo{{
		Path:   filepath.Join(t.TempDir(), "table_Central_Office_2016_20250101_120000.html"),
		Year:   2016,
		Office: "Central Office",
	}}

	result := ProcessBatch(docs, testCfg())
	if result.Skipped != 1 || result.Parsed != 0 {
		t.Fatalf("parsed=%d skipped=%d", result.Parsed, result.Skipped)
	}
	if result.Outcomes[0].Failure == nil || !strings.Contains(*result.Outcomes[0].Failure, "CRIT-052") {
		t.Fatalf("failure=%v", result.Outcomes[0].Failure)
	}
}
