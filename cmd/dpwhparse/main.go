package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dpwhparse/internal/config"
	"dpwhparse/internal/pipeline"
	"dpwhparse/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "parse":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		year := fs.Int("year", 0, "only parse files for this year")
		htmlDir := fs.String("html", "", "directory of scraped table_*.html files")
		outDir := fs.String("out", "", "output directory for CSV and summary")
		workers := fs.Int("workers", 0, "parallel document workers")
		_ = fs.Parse(os.Args[2:])
		if *htmlDir != "" {
			cfg.HTMLDir = *htmlDir
		}
		if *outDir != "" {
			cfg.OutputDir = *outDir
		}
		if *workers > 0 {
			cfg.ParseWorkers = *workers
		}
		must(runParse(cfg, *year))
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		year := fs.Int("year", 0, "only export contracts for this year")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *out == "" {
			must(fmt.Errorf("--out is required"))
		}
		must(runExportXLSX(cfg, *year, *out))
	default:
		usage()
		os.Exit(1)
	}
}

func runParse(cfg config.Config, year int) error {
	start := time.Now()

	docs, err := pipeline.DiscoverDocuments(cfg.HTMLDir, year)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no HTML files found in %s", cfg.HTMLDir)
	}
	fmt.Printf("found %d HTML file(s) to process\n", len(docs))

	result := pipeline.ProcessBatch(docs, cfg)

	csvName := "contracts_all_years_all_offices.csv"
	summaryName := "parse_summary_all_years.md"
	if year != 0 {
		csvName = fmt.Sprintf("contracts_%d_all_offices.csv", year)
		summaryName = fmt.Sprintf("parse_summary_%d.md", year)
	}
	csvPath := filepath.Join(cfg.OutputDir, csvName)
	if err := pipeline.ExportRecordsToCSV(result.Records, csvPath); err != nil {
		return err
	}
	if err := pipeline.WriteSummary(result, filepath.Join(cfg.OutputDir, summaryName)); err != nil {
		return err
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, out := range result.Outcomes {
		status := "parsed"
		if out.Failure != nil {
			status = "skipped"
		}
		docID, err := db.UpsertDocument(out.Doc, status, out.Failure)
		if err != nil {
			return err
		}
		if len(out.Records) > 0 {
			if err := db.InsertContracts(docID, out.Records); err != nil {
				return err
			}
		}
	}

	counts := map[string]int{
		"files":     len(docs),
		"parsed":    result.Parsed,
		"skipped":   result.Skipped,
		"contracts": len(result.Records),
	}
	timings := map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}
	if err := db.InsertRun(pipeline.TraceID(), timings, counts); err != nil {
		return err
	}

	fmt.Printf("parse done files=%d parsed=%d skipped=%d contracts=%d output=%s\n",
		len(docs), result.Parsed, result.Skipped, len(result.Records), csvPath)
	return nil
}

func runExportXLSX(cfg config.Config, year int, out string) error {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.ListContracts(year)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no stored contracts to export (year=%d)", year)
	}
	if err := pipeline.ExportRecordsToXLSX(records, out); err != nil {
		return err
	}
	fmt.Printf("exported %d contracts to %s\n", len(records), out)
	return nil
}

func usage() {
	fmt.Println("usage: dpwhparse <command>")
	fmt.Println("commands:")
	fmt.Println("  parse [--year=2022] [--html=./html] [--out=./csv] [--workers=4]")
	fmt.Println("  export:xlsx --out=./out/contracts.xlsx [--year=2022]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
