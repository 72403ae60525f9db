package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"thermocalc/internal/thermo"

	_ "modernc.org/sqlite"
)

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// nullFloat converts a sql.NullFloat64 to a plain float64 (0 if null).
func nullFloat(nf sql.NullFloat64) float64 {
	if nf.Valid {
		return nf.Float64
	}
	return 0
}

// nullStr converts a sql.NullString to a plain string (empty if null).
func nullStr(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .thermocalc) if it does not
// exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("init schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version > schemaVersion:
		return fmt.Errorf("store schema version %d is newer than this build supports (%d)", version, schemaVersion)
	}
	return nil
}

// Close closes the underlying database.
func (s *SqlStore) Close() error { return s.db.Close() }

// Candidates returns every record stored under the exact formula.
func (s *SqlStore) Candidates(formula string) ([]*thermo.Record, error) {
	rows, err := s.db.Query(`
		SELECT id, formula, phase, tmin, tmax, h298, s298,
		       f1, f2, f3, f4, f5, f6,
		       tmelt, tboil, hfusion, sfusion, hvapor, svapor,
		       reliability, molar_mass, source
		FROM records WHERE formula = ?`, formula)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []*thermo.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(rows *sql.Rows) (*thermo.Record, error) {
	var (
		rec       thermo.Record
		phase     string
		molarMass sql.NullFloat64
		source    sql.NullString

		tmelt, tboil, hfus, sfus, hvap, svap sql.NullFloat64
	)
	err := rows.Scan(&rec.ID, &rec.Formula, &phase, &rec.Tmin, &rec.Tmax, &rec.H298, &rec.S298,
		&rec.Coeffs[0], &rec.Coeffs[1], &rec.Coeffs[2], &rec.Coeffs[3], &rec.Coeffs[4], &rec.Coeffs[5],
		&tmelt, &tboil, &hfus, &sfus, &hvap, &svap,
		&rec.Reliability, &molarMass, &source)
	if err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}
	p, _ := thermo.ParsePhase(phase)
	rec.Phase = p
	rec.Tmelt = nullFloat(tmelt)
	rec.Tboil = nullFloat(tboil)
	rec.HFusion = nullFloat(hfus)
	rec.SFusion = nullFloat(sfus)
	rec.HVapor = nullFloat(hvap)
	rec.SVapor = nullFloat(svap)
	rec.MolarMass = nullFloat(molarMass)
	rec.Source = nullStr(source)
	return &rec, nil
}

// SaveRecord inserts a reference record.
func (s *SqlStore) SaveRecord(rec *thermo.Record) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}
	res, err := s.db.Exec(`
		INSERT INTO records (formula, phase, tmin, tmax, h298, s298,
		                     f1, f2, f3, f4, f5, f6,
		                     tmelt, tboil, hfusion, sfusion, hvapor, svapor,
		                     reliability, molar_mass, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Formula, rec.Phase.Label(), rec.Tmin, rec.Tmax, rec.H298, rec.S298,
		rec.Coeffs[0], rec.Coeffs[1], rec.Coeffs[2], rec.Coeffs[3], rec.Coeffs[4], rec.Coeffs[5],
		rec.Tmelt, rec.Tboil, rec.HFusion, rec.SFusion, rec.HVapor, rec.SVapor,
		rec.Reliability, rec.MolarMass, rec.Source, nowUTC())
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	return res.LastInsertId()
}

// Formulas lists the distinct formulas with at least one record.
func (s *SqlStore) Formulas() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT formula FROM records ORDER BY formula`)
	if err != nil {
		return nil, fmt.Errorf("query formulas: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("scan formula: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// SaveCalculation appends one calculation to the history.
func (s *SqlStore) SaveCalculation(c *Calculation) error {
	if c.Created == "" {
		c.Created = nowUTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO calculations (id, formula, temperature, enthalpy, entropy, gibbs, warnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Formula, c.T, c.H, c.S, c.G, c.Warnings, c.Created)
	if err != nil {
		return fmt.Errorf("insert calculation: %w", err)
	}
	return nil
}

// ListCalculations returns the most recent calculations, newest first.
func (s *SqlStore) ListCalculations(limit int) ([]*Calculation, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, formula, temperature, enthalpy, entropy, gibbs, warnings, created_at
		FROM calculations ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query calculations: %w", err)
	}
	defer rows.Close()

	var out []*Calculation
	for rows.Next() {
		var c Calculation
		if err := rows.Scan(&c.ID, &c.Formula, &c.T, &c.H, &c.S, &c.G, &c.Warnings, &c.Created); err != nil {
			return nil, fmt.Errorf("scan calculation: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
