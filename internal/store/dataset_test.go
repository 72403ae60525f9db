package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thermocalc/internal/thermo"
)

const sampleDataset = `
substances:
  - formula: FeO
    molar_mass: 71.844
    records:
      - phase: s
        tmin: 298.15
        tmax: 600
        h298: -272.04
        s298: 60.752
        coeffs: [50]
        tmelt: 1650
        hfusion: 48.597
        reliability: 1
      - phase: l
        tmin: 1650
        tmax: 1900
        h298: -222.0
        s298: 90.0
        coeffs: [70]
        tmelt: 1650
`

func TestParseDataset(t *testing.T) {
	recs, err := ParseDataset([]byte(sampleDataset))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	solid := recs[0]
	assert.Equal(t, "FeO", solid.Formula)
	assert.Equal(t, thermo.PhaseSolid, solid.Phase)
	assert.Equal(t, 50.0, solid.Coeffs[0])
	assert.Equal(t, 0.0, solid.Coeffs[5], "absent coefficients default to zero")
	assert.Equal(t, 71.844, solid.MolarMass)
	assert.True(t, solid.IsBase())

	liquid := recs[1]
	assert.Equal(t, thermo.PhaseLiquid, liquid.Phase)
	assert.Equal(t, 1, liquid.Reliability, "absent reliability defaults to the best tier")
}

func TestParseDataset_UnmappedPhase(t *testing.T) {
	data := []byte(`
substances:
  - formula: FeO
    records:
      - phase: plasma
        tmin: 298.15
        tmax: 600
        coeffs: [50]
`)
	_, err := ParseDataset(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmapped phase")
}

func TestParseDataset_TooManyCoeffs(t *testing.T) {
	data := []byte(`
substances:
  - formula: FeO
    records:
      - phase: s
        tmin: 298.15
        tmax: 600
        coeffs: [1, 2, 3, 4, 5, 6, 7]
`)
	_, err := ParseDataset(data)
	assert.Error(t, err)
}

func TestParseDataset_InvalidWindow(t *testing.T) {
	data := []byte(`
substances:
  - formula: FeO
    records:
      - phase: s
        tmin: 600
        tmax: 298.15
        coeffs: [50]
`)
	_, err := ParseDataset(data)
	assert.Error(t, err)
}

func TestLoadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "substances.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDataset), 0o644))

	recs, err := LoadDataset(path)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	_, err = LoadDataset(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEmbedded(t *testing.T) {
	s, err := Embedded()
	require.NoError(t, err)

	formulas, err := s.Formulas()
	require.NoError(t, err)
	assert.NotEmpty(t, formulas)

	for _, f := range []string{"FeO", "H2O", "Fe2O3", "CeCl3"} {
		recs, err := s.Candidates(f)
		require.NoError(t, err)
		assert.NotEmpty(t, recs, "built-in dataset should carry %s", f)
	}
}

func TestImport(t *testing.T) {
	recs, err := ParseDataset([]byte(sampleDataset))
	require.NoError(t, err)

	dst := NewMemStore()
	n, err := Import(dst, recs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := dst.Candidates("FeO")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
