package store

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"thermocalc/internal/thermo"
)

//go:embed data/substances.yaml
var embeddedDataset []byte

type datasetFile struct {
	Substances []datasetSubstance `yaml:"substances"`
}

type datasetSubstance struct {
	Formula   string          `yaml:"formula"`
	MolarMass float64         `yaml:"molar_mass,omitempty"`
	Records   []datasetRecord `yaml:"records"`
}

type datasetRecord struct {
	Phase       string    `yaml:"phase"`
	Tmin        float64   `yaml:"tmin"`
	Tmax        float64   `yaml:"tmax"`
	H298        float64   `yaml:"h298,omitempty"`
	S298        float64   `yaml:"s298,omitempty"`
	Coeffs      []float64 `yaml:"coeffs"`
	Tmelt       float64   `yaml:"tmelt,omitempty"`
	Tboil       float64   `yaml:"tboil,omitempty"`
	HFusion     float64   `yaml:"hfusion,omitempty"`
	SFusion     float64   `yaml:"sfusion,omitempty"`
	HVapor      float64   `yaml:"hvapor,omitempty"`
	SVapor      float64   `yaml:"svapor,omitempty"`
	Reliability int       `yaml:"reliability,omitempty"`
	Source      string    `yaml:"source,omitempty"`
}

// ParseDataset decodes a YAML reference dataset into records. Unmapped
// phase labels are rejected at ingestion rather than propagated.
func ParseDataset(data []byte) ([]*thermo.Record, error) {
	var f datasetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	var out []*thermo.Record
	for _, sub := range f.Substances {
		for i, dr := range sub.Records {
			phase, ok := thermo.ParsePhase(dr.Phase)
			if !ok {
				return nil, fmt.Errorf("dataset: %s record %d: unmapped phase %q", sub.Formula, i, dr.Phase)
			}
			if len(dr.Coeffs) > 6 {
				return nil, fmt.Errorf("dataset: %s record %d: %d coefficients, want at most 6", sub.Formula, i, len(dr.Coeffs))
			}
			rec := &thermo.Record{
				Formula:     sub.Formula,
				Phase:       phase,
				Tmin:        dr.Tmin,
				Tmax:        dr.Tmax,
				H298:        dr.H298,
				S298:        dr.S298,
				Tmelt:       dr.Tmelt,
				Tboil:       dr.Tboil,
				HFusion:     dr.HFusion,
				SFusion:     dr.SFusion,
				HVapor:      dr.HVapor,
				SVapor:      dr.SVapor,
				Reliability: dr.Reliability,
				MolarMass:   sub.MolarMass,
				Source:      dr.Source,
			}
			copy(rec.Coeffs[:], dr.Coeffs)
			if rec.Reliability == 0 {
				rec.Reliability = 1
			}
			if err := rec.Validate(); err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
	}
	return out, nil
}

// LoadDataset reads and parses a YAML dataset file.
func LoadDataset(path string) ([]*thermo.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return ParseDataset(data)
}

// Embedded returns an in-memory store preloaded with the reference
// dataset shipped in the binary.
func Embedded() (*MemStore, error) {
	recs, err := ParseDataset(embeddedDataset)
	if err != nil {
		return nil, fmt.Errorf("embedded dataset: %w", err)
	}
	s := NewMemStore()
	for _, rec := range recs {
		if _, err := s.SaveRecord(rec); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Import copies every record of a parsed dataset into dst, returning
// the number of records written.
func Import(dst Store, recs []*thermo.Record) (int, error) {
	n := 0
	for _, rec := range recs {
		if _, err := dst.SaveRecord(rec); err != nil {
			return n, fmt.Errorf("import %s [%.2f, %.2f]: %w", rec.Formula, rec.Tmin, rec.Tmax, err)
		}
		n++
	}
	return n, nil
}
