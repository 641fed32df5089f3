package loss

import (
	"math"
	"testing"

	"github.com/san-kum/cosray/internal/particle"
	"github.com/san-kum/cosray/internal/unit"
	"github.com/san-kum/cosray/internal/vec"
)

func loadTable(t *testing.T) *PairProduction {
	t.Helper()
	p, err := NewPairProduction("testdata/epair_CMB.txt")
	if err != nil {
		t.Fatalf("NewPairProduction: %v", err)
	}
	return p
}

func nucleus(z, a int, energy float64) *particle.Candidate {
	c := particle.New(z, a, energy, vec.Zero(), vec.Vec3{Z: 1})
	c.CurrentStep = 1 * unit.MegaParsec
	return c
}

func TestPairProduction_LoadTable(t *testing.T) {
	p := loadTable(t)
	if len(p.energy) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(p.energy))
	}
	if p.energy[0] != 1.0e18*unit.ElectronVolt {
		t.Errorf("first energy = %e, want %e", p.energy[0], 1.0e18*unit.ElectronVolt)
	}
	if p.rate[0] != 2.0e14*unit.ElectronVolt/unit.MegaParsec {
		t.Errorf("first rate = %e", p.rate[0])
	}
}

func TestPairProduction_BelowThreshold(t *testing.T) {
	p := loadTable(t)
	c := nucleus(1, 1, 1e17*unit.ElectronVolt)
	e0 := c.Energy

	if err := p.Process(c, nil); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if c.Energy != e0 {
		t.Errorf("below-threshold candidate lost energy: %e -> %e", e0, c.Energy)
	}
}

func TestPairProduction_ThresholdBoundary(t *testing.T) {
	p := loadTable(t)

	// energy per nucleon exactly at the first and last table rows
	for _, e := range []float64{1.0e18, 1.0e21} {
		c := nucleus(1, 1, e*unit.ElectronVolt)
		e0 := c.Energy
		if err := p.Process(c, nil); err != nil {
			t.Fatalf("Process at boundary %e: %v", e, err)
		}
		if !(c.Energy < e0) || c.Energy < 0 {
			t.Errorf("boundary energy %e eV: energy %e -> %e", e, e0, c.Energy)
		}
	}
}

func TestPairProduction_InterpolatedLoss(t *testing.T) {
	p := loadTable(t)
	c := nucleus(1, 1, 1.5e18*unit.ElectronVolt)
	e0 := c.Energy

	if err := p.Process(c, nil); err != nil {
		t.Fatalf("Process: %v", err)
	}

	// halfway between 2.0e14 and 8.0e14 eV/Mpc over 1 Mpc
	wantDE := 5.0e14 * unit.ElectronVolt
	gotDE := e0 - c.Energy
	if math.Abs(gotDE-wantDE) > 1e-6*wantDE {
		t.Errorf("dE = %e, want %e", gotDE, wantDE)
	}
}

func TestPairProduction_ExtrapolationAboveTable(t *testing.T) {
	p := loadTable(t)
	top := 1.0e21 * unit.ElectronVolt
	rateTop := 2.0e18 * unit.ElectronVolt / unit.MegaParsec

	got := p.lookup(4 * top)
	want := rateTop * math.Pow(4, extrapolationIndex)
	if math.Abs(got-want) > 1e-9*want {
		t.Errorf("extrapolated rate %e, want %e", got, want)
	}
}

func TestPairProduction_ChargeSquaredScaling(t *testing.T) {
	p := loadTable(t)

	// same energy per nucleon, charges 1 and 2
	pr := nucleus(1, 1, 1.0e19*unit.ElectronVolt)
	he := nucleus(2, 4, 4.0e19*unit.ElectronVolt)
	ePr, eHe := pr.Energy, he.Energy

	if err := p.Process(pr, nil); err != nil {
		t.Fatal(err)
	}
	if err := p.Process(he, nil); err != nil {
		t.Fatal(err)
	}

	dPr := ePr - pr.Energy
	dHe := eHe - he.Energy
	if math.Abs(dHe/dPr-4) > 1e-9 {
		t.Errorf("Z=2 loss should be 4x the Z=1 loss, ratio %f", dHe/dPr)
	}
}

func TestPairProduction_LossNeverExceedsEnergy(t *testing.T) {
	p := loadTable(t)
	c := nucleus(26, 56, 56*1.0e20*unit.ElectronVolt)
	c.CurrentStep = 1e5 * unit.MegaParsec // absurdly long step

	if err := p.Process(c, nil); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if c.Energy < 0 {
		t.Errorf("energy went negative: %e", c.Energy)
	}
}

func TestPairProduction_SkipsNonNuclei(t *testing.T) {
	p := loadTable(t)

	neutral := nucleus(0, 1, 1.0e19*unit.ElectronVolt)
	e0 := neutral.Energy
	if err := p.Process(neutral, nil); err != nil {
		t.Fatal(err)
	}
	if neutral.Energy != e0 {
		t.Error("neutral candidate lost energy to pair production")
	}
}

func TestPairProduction_RedshiftScaling(t *testing.T) {
	p := loadTable(t)

	local := nucleus(1, 1, 1.0e19*unit.ElectronVolt)
	shifted := nucleus(1, 1, 1.0e19*unit.ElectronVolt)
	shifted.Redshift = 1

	eL, eS := local.Energy, shifted.Energy
	if err := p.Process(local, nil); err != nil {
		t.Fatal(err)
	}
	if err := p.Process(shifted, nil); err != nil {
		t.Fatal(err)
	}

	if !(eS-shifted.Energy > eL-local.Energy) {
		t.Error("redshifted photon field should increase the loss")
	}
}

func TestPairProduction_EnergyLossLength(t *testing.T) {
	p := loadTable(t)

	if !math.IsInf(p.EnergyLossLength(0, 1, 1e20*unit.ElectronVolt), 1) {
		t.Error("neutral loss length should be infinite")
	}
	if !math.IsInf(p.EnergyLossLength(1, 1, 1e15*unit.ElectronVolt), 1) {
		t.Error("below-threshold loss length should be infinite")
	}

	l := p.EnergyLossLength(1, 1, 1.0e19*unit.ElectronVolt)
	want := 1.0e19 / 1.5e16 * unit.MegaParsec
	if math.Abs(l-want) > 1e-6*want {
		t.Errorf("loss length %e, want %e", l, want)
	}
}

func TestPairProduction_InvalidTables(t *testing.T) {
	if _, err := NewPairProduction("testdata/missing.txt"); err == nil {
		t.Error("missing file should fail")
	}
	if _, err := NewPairProductionFromTable([]float64{1}, []float64{1}, "x"); err == nil {
		t.Error("single-row table should fail")
	}
	if _, err := NewPairProductionFromTable([]float64{2, 1}, []float64{1, 1}, "x"); err == nil {
		t.Error("descending energies should fail")
	}
}
