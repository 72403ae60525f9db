package store

// schemaVersion is the target schema version for this build.
const schemaVersion = 1

// schema is the reference-data DDL. Records mirror the fields of
// thermo.Record one to one; calculations are the append-only history.
var schema = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS records (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	formula     TEXT NOT NULL,
	phase       TEXT NOT NULL,
	tmin        REAL NOT NULL,
	tmax        REAL NOT NULL,
	h298        REAL NOT NULL DEFAULT 0,
	s298        REAL NOT NULL DEFAULT 0,
	f1          REAL NOT NULL DEFAULT 0,
	f2          REAL NOT NULL DEFAULT 0,
	f3          REAL NOT NULL DEFAULT 0,
	f4          REAL NOT NULL DEFAULT 0,
	f5          REAL NOT NULL DEFAULT 0,
	f6          REAL NOT NULL DEFAULT 0,
	tmelt       REAL,
	tboil       REAL,
	hfusion     REAL,
	sfusion     REAL,
	hvapor      REAL,
	svapor      REAL,
	reliability INTEGER NOT NULL DEFAULT 3,
	molar_mass  REAL,
	source      TEXT,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_formula ON records(formula);

CREATE TABLE IF NOT EXISTS calculations (
	id          TEXT PRIMARY KEY,
	formula     TEXT NOT NULL,
	temperature REAL NOT NULL,
	enthalpy    REAL NOT NULL,
	entropy     REAL NOT NULL,
	gibbs       REAL NOT NULL,
	warnings    INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
);
`
