package main

import (
	"fmt"
	"strconv"

	"thermocalc/internal/config"
	"thermocalc/internal/format"
	"thermocalc/internal/store"
)

// engineConfig loads the config file when given, defaults otherwise.
func engineConfig() (config.Config, error) {
	if rootFlags.config == "" {
		return config.Default(), nil
	}
	return config.Load(rootFlags.config)
}

// openStore picks the record source for this invocation: an explicit
// SQLite DB, an explicit YAML dataset, or the built-in dataset.
func openStore() (store.Store, error) {
	switch {
	case rootFlags.dbPath != "":
		return store.Open(rootFlags.dbPath)
	case rootFlags.dataset != "":
		recs, err := store.LoadDataset(rootFlags.dataset)
		if err != nil {
			return nil, err
		}
		s := store.NewMemStore()
		if _, err := store.Import(s, recs); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return store.Embedded()
	}
}

func outputMode() format.Mode { return format.ParseMode(rootFlags.output) }

// parseTemp parses a temperature argument, accepting a trailing "K".
func parseTemp(s string) (float64, error) {
	if len(s) > 1 && (s[len(s)-1] == 'K' || s[len(s)-1] == 'k') {
		s = s[:len(s)-1]
	}
	t, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid temperature %q", s)
	}
	if t <= 0 {
		return 0, fmt.Errorf("temperature must be positive, got %g K", t)
	}
	return t, nil
}
