package thermo

import "testing"

func TestParsePhase(t *testing.T) {
	cases := []struct {
		raw  string
		want Phase
		ok   bool
	}{
		{"s", PhaseSolid, true},
		{"c", PhaseSolid, true},
		{" solid ", PhaseSolid, true},
		{"l", PhaseLiquid, true},
		{"LIQ", PhaseLiquid, true},
		{"g", PhaseGas, true},
		{"vap", PhaseGas, true},
		{"aq", PhaseAqueous, true},
		{"ao", PhaseAqueous, true},
		{"plasma", PhaseUnknown, false},
		{"", PhaseUnknown, false},
	}
	for _, c := range cases {
		got, ok := ParsePhase(c.raw)
		if got != c.want || ok != c.ok {
			t.Errorf("ParsePhase(%q) = (%v, %v), want (%v, %v)", c.raw, got, ok, c.want, c.ok)
		}
	}
}

func TestPhase_Rank(t *testing.T) {
	if PhaseSolid.Rank() >= PhaseLiquid.Rank() || PhaseLiquid.Rank() >= PhaseGas.Rank() {
		t.Error("rank order must be solid < liquid < gas")
	}
	if PhaseAqueous.Rank() != 0 {
		t.Errorf("aqueous rank = %d, want 0 (outside transition ordering)", PhaseAqueous.Rank())
	}
	if PhaseUnknown.Rank() != 0 {
		t.Errorf("unknown rank = %d, want 0", PhaseUnknown.Rank())
	}
}

func TestPhase_Label(t *testing.T) {
	cases := map[Phase]string{
		PhaseSolid:   "s",
		PhaseLiquid:  "l",
		PhaseGas:     "g",
		PhaseAqueous: "aq",
		PhaseUnknown: "?",
	}
	for p, want := range cases {
		if got := p.Label(); got != want {
			t.Errorf("%v.Label() = %q, want %q", p, got, want)
		}
	}
}

func TestClassifyTransition(t *testing.T) {
	cases := []struct {
		from, to Phase
		want     TransitionKind
	}{
		{PhaseSolid, PhaseLiquid, Melting},
		{PhaseLiquid, PhaseGas, Boiling},
		{PhaseSolid, PhaseGas, Sublimation},
		{PhaseLiquid, PhaseSolid, TransitionUnknown},
		{PhaseGas, PhaseLiquid, TransitionUnknown},
		{PhaseSolid, PhaseAqueous, TransitionUnknown},
	}
	for _, c := range cases {
		if got := ClassifyTransition(c.from, c.to); got != c.want {
			t.Errorf("ClassifyTransition(%v, %v) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
