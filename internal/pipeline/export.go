package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"dpwhparse/internal"
	"dpwhparse/internal/util"
)

// Column order is a compatibility contract with downstream consumers.
// Never reorder.
var exportHeaders = []string{
	"row_number", "contract_id", "description",
	"contractor_name_1", "contractor_id_1",
	"contractor_name_2", "contractor_id_2",
	"contractor_name_3", "contractor_id_3",
	"contractor_name_4", "contractor_id_4",
	"region", "implementing_office", "source_of_funds",
	"cost_php", "effectivity_date", "expiry_date",
	"status", "accomplishment_pct",
	"year", "source_office", "file_source",
	"critical_errors", "errors", "warnings", "info_notes",
}

func recordToRow(rec internal.ContractRecord) []string {
	return []string{
		util.DerefString(rec.RowNumber),
		util.DerefString(rec.ContractID),
		util.DerefString(rec.Description),
		util.DerefString(rec.ContractorName1),
		util.DerefString(rec.ContractorID1),
		util.DerefString(rec.ContractorName2),
		util.DerefString(rec.ContractorID2),
		util.DerefString(rec.ContractorName3),
		util.DerefString(rec.ContractorID3),
		util.DerefString(rec.ContractorName4),
		util.DerefString(rec.ContractorID4),
		util.DerefString(rec.Region),
		util.DerefString(rec.ImplementingOffice),
		util.DerefString(rec.SourceOfFunds),
		derefFloatString(rec.CostPHP),
		util.DerefString(rec.EffectivityDate),
		util.DerefString(rec.ExpiryDate),
		util.DerefString(rec.Status),
		derefFloatString(rec.AccomplishmentPct),
		strconv.Itoa(rec.Year),
		rec.SourceOffice,
		rec.FileSource,
		util.DerefString(rec.CriticalErrors),
		util.DerefString(rec.Errors),
		util.DerefString(rec.Warnings),
		util.DerefString(rec.InfoNotes),
	}
}

// ExportRecordsToCSV writes the dataset as UTF-8 CSV with LF endings.
func ExportRecordsToCSV(records []internal.ContractRecord, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeaders); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(recordToRow(rec)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ExportRecordsToXLSX writes the same dataset as a spreadsheet, numeric
// columns kept numeric.
func ExportRecordsToXLSX(records []internal.ContractRecord, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		row := recordToRow(rec)
		for col, text := range row {
			set(col+1, text)
		}
		// Overwrite the numeric columns with typed values.
		set(15, derefFloat(rec.CostPHP))
		set(19, derefFloat(rec.AccomplishmentPct))
		set(20, rec.Year)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefFloatString(v *float64) string {
	if v == nil {
		return ""
	}
	return util.FormatFloat(*v)
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
