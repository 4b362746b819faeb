package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"dpwhparse/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  filename TEXT NOT NULL UNIQUE,
  year INTEGER NOT NULL,
  office TEXT NOT NULL,
  status TEXT NOT NULL,
  failureNote TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_documents_year ON documents(year);

CREATE TABLE IF NOT EXISTS contracts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  documentId INTEGER NOT NULL,
  rowNumber TEXT,
  contractId TEXT,
  description TEXT,
  contractorName1 TEXT,
  contractorId1 TEXT,
  contractorName2 TEXT,
  contractorId2 TEXT,
  contractorName3 TEXT,
  contractorId3 TEXT,
  contractorName4 TEXT,
  contractorId4 TEXT,
  region TEXT,
  implementingOffice TEXT,
  sourceOfFunds TEXT,
  costPhp REAL,
  effectivityDate TEXT,
  expiryDate TEXT,
  status TEXT,
  accomplishmentPct REAL,
  year INTEGER NOT NULL,
  sourceOffice TEXT NOT NULL,
  fileSource TEXT NOT NULL,
  criticalErrors TEXT,
  errors TEXT,
  warnings TEXT,
  infoNotes TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);
CREATE INDEX IF NOT EXISTS idx_contracts_year ON contracts(year);
CREATE INDEX IF NOT EXISTS idx_contracts_contractId ON contracts(contractId);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// UpsertDocument records one document outcome, replacing any earlier run
// of the same file. Returns the document row id.
func (d *DB) UpsertDocument(doc internal.DocumentInfo, status string, failureNote *string) (int64, error) {
	filename := filepath.Base(doc.Path)
	_, err := d.conn.Exec(`
INSERT INTO documents (filename, year, office, status, failureNote)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(filename) DO UPDATE SET
  year=excluded.year,
  office=excluded.office,
  status=excluded.status,
  failureNote=excluded.failureNote,
  updatedAt=CURRENT_TIMESTAMP
`, filename, doc.Year, doc.Office, status, failureNote)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := d.conn.QueryRow(`SELECT id FROM documents WHERE filename = ?`, filename).Scan(&id); err != nil {
		return 0, err
	}
	if _, err := d.conn.Exec(`DELETE FROM contracts WHERE documentId = ?`, id); err != nil {
		return 0, err
	}
	return id, nil
}

func (d *DB) InsertContracts(documentID int64, records []internal.ContractRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO contracts (
  documentId, rowNumber, contractId, description,
  contractorName1, contractorId1, contractorName2, contractorId2,
  contractorName3, contractorId3, contractorName4, contractorId4,
  region, implementingOffice, sourceOfFunds,
  costPhp, effectivityDate, expiryDate, status, accomplishmentPct,
  year, sourceOffice, fileSource,
  criticalErrors, errors, warnings, infoNotes
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(
			documentID, rec.RowNumber, rec.ContractID, rec.Description,
			rec.ContractorName1, rec.ContractorID1, rec.ContractorName2, rec.ContractorID2,
			rec.ContractorName3, rec.ContractorID3, rec.ContractorName4, rec.ContractorID4,
			rec.Region, rec.ImplementingOffice, rec.SourceOfFunds,
			rec.CostPHP, rec.EffectivityDate, rec.ExpiryDate, rec.Status, rec.AccomplishmentPct,
			rec.Year, rec.SourceOffice, rec.FileSource,
			rec.CriticalErrors, rec.Errors, rec.Warnings, rec.InfoNotes,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListContracts returns stored contracts, optionally filtered to one year,
// in stable (year, office, insertion) order.
func (d *DB) ListContracts(yearFilter int) ([]internal.ContractRecord, error) {
	query := `
SELECT rowNumber, contractId, description,
       contractorName1, contractorId1, contractorName2, contractorId2,
       contractorName3, contractorId3, contractorName4, contractorId4,
       region, implementingOffice, sourceOfFunds,
       costPhp, effectivityDate, expiryDate, status, accomplishmentPct,
       year, sourceOffice, fileSource,
       criticalErrors, errors, warnings, infoNotes
FROM contracts`
	args := []any{}
	if yearFilter != 0 {
		query += ` WHERE year = ?`
		args = append(args, yearFilter)
	}
	query += ` ORDER BY year ASC, sourceOffice ASC, id ASC`

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ContractRecord
	for rows.Next() {
		var rec internal.ContractRecord
		if err := rows.Scan(
			&rec.RowNumber, &rec.ContractID, &rec.Description,
			&rec.ContractorName1, &rec.ContractorID1, &rec.ContractorName2, &rec.ContractorID2,
			&rec.ContractorName3, &rec.ContractorID3, &rec.ContractorName4, &rec.ContractorID4,
			&rec.Region, &rec.ImplementingOffice, &rec.SourceOfFunds,
			&rec.CostPHP, &rec.EffectivityDate, &rec.ExpiryDate, &rec.Status, &rec.AccomplishmentPct,
			&rec.Year, &rec.SourceOffice, &rec.FileSource,
			&rec.CriticalErrors, &rec.Errors, &rec.Warnings, &rec.InfoNotes,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (d *DB) CountContracts(yearFilter int) (int, error) {
	query := `SELECT COUNT(*) FROM contracts`
	args := []any{}
	if yearFilter != 0 {
		query += ` WHERE year = ?`
		args = append(args, yearFilter)
	}
	var count int
	err := d.conn.QueryRow(query, args...).Scan(&count)
	return count, err
}

func (d *DB) ListSkippedDocuments() ([]string, error) {
	rows, err := d.conn.Query(`SELECT filename, failureNote FROM documents WHERE status = 'skipped' ORDER BY filename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var filename string
		var note sql.NullString
		if err := rows.Scan(&filename, &note); err != nil {
			return nil, err
		}
		entry := filename
		if note.Valid {
			entry += ": " + note.String
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(traceID string, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, timingsJson, countsJson) VALUES (?, ?, ?)`, traceID, string(timingsJSON), string(countsJSON))
	return err
}
