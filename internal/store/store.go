// Package store supplies candidate reference records to the
// calculation engine and persists calculation history. The engine is
// indifferent to provenance: the same Store interface is served by
// SQLite or by an in-memory dataset loaded from YAML.
package store

import "thermocalc/internal/thermo"

// DefaultDBPath is the default relative path for the SQLite DB.
// Open() creates the parent dir (e.g. .thermocalc).
const DefaultDBPath = ".thermocalc/thermocalc.db"

// Calculation is one saved calculation result, for history listings.
type Calculation struct {
	ID       string // uuid
	Formula  string
	T        float64
	H        float64
	S        float64
	G        float64
	Warnings int
	Created  string // RFC 3339 UTC
}

// Store is the persistence facade: reference records and calculation
// history. The resolver consumes only the Candidates side (it matches
// resolve.Source); the CLI uses the rest.
type Store interface {
	// Candidates returns every reference record stored under the
	// exact formula, in no particular order.
	Candidates(formula string) ([]*thermo.Record, error)
	// SaveRecord inserts a reference record and returns its id.
	SaveRecord(rec *thermo.Record) (int64, error)
	// Formulas lists the distinct formulas with at least one record.
	Formulas() ([]string, error)

	// SaveCalculation appends one calculation to the history.
	SaveCalculation(c *Calculation) error
	// ListCalculations returns the most recent calculations, newest
	// first.
	ListCalculations(limit int) ([]*Calculation, error)

	Close() error
}
