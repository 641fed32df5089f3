// Package loss implements continuous energy-loss processes applied after
// each propagation step. Loss rates come from tabulated interaction data.
package loss

import (
	"bufio"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/cosray/internal/particle"
	"github.com/san-kum/cosray/internal/unit"
)

// PairProduction drains energy from nuclei through electron pair production
// on a background photon field. The loss rate is looked up per nucleon in a
// tabulated energy grid; the deposited energy scales with Z², the redshifted
// photon density and the step just taken.
type PairProduction struct {
	desc   string
	energy []float64 // tabulated energy per nucleon, ascending (J)
	rate   []float64 // energy loss rate (J/m)
}

// Above the table the loss rate follows a power-law extrapolation in energy.
const extrapolationIndex = 0.4

// NewPairProduction loads a loss-rate table. The file holds two columns,
// energy per nucleon in eV and loss rate in eV/Mpc; lines starting with #
// are comments.
func NewPairProduction(path string) (*PairProduction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loss: open table: %w", err)
	}
	defer f.Close()

	var energy, rate []float64
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("loss: %s:%d: expected two columns", path, line)
		}
		e, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("loss: %s:%d: %w", path, line, err)
		}
		r, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("loss: %s:%d: %w", path, line, err)
		}
		energy = append(energy, e*unit.ElectronVolt)
		rate = append(rate, r*unit.ElectronVolt/unit.MegaParsec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("loss: read table: %w", err)
	}
	return NewPairProductionFromTable(energy, rate, fmt.Sprintf("PairProduction: %s", path))
}

// NewPairProductionFromTable builds the module from an in-memory table with
// energies in joules and rates in joules per meter.
func NewPairProductionFromTable(energy, rate []float64, desc string) (*PairProduction, error) {
	if len(energy) < 2 || len(energy) != len(rate) {
		return nil, fmt.Errorf("loss: need at least two table rows, got %d/%d", len(energy), len(rate))
	}
	for i := 1; i < len(energy); i++ {
		if energy[i] <= energy[i-1] {
			return nil, fmt.Errorf("loss: table energies must be strictly ascending at row %d", i)
		}
	}
	return &PairProduction{desc: desc, energy: energy, rate: rate}, nil
}

// Process removes the pair-production energy loss accumulated over the
// candidate's current step. Below the table threshold nothing happens; the
// loss never exceeds the remaining energy.
func (p *PairProduction) Process(c *particle.Candidate, _ *rand.Rand) error {
	if !c.IsNucleus() || c.ChargeNumber < 1 {
		return nil
	}

	z := c.Redshift
	epa := c.Energy / float64(c.MassNumber) * (1 + z)
	if epa < p.energy[0] {
		return nil
	}

	rate := p.lookup(epa)

	// comoving step to the local frame: dx = dx_com / (1+z)
	step := c.CurrentStep / (1 + z)

	zz := float64(c.ChargeNumber * c.ChargeNumber)
	dE := zz * rate * (1 + z) * (1 + z) * step
	if dE > c.Energy {
		dE = c.Energy
	}
	c.Energy -= dE
	return nil
}

// lookup interpolates the loss rate at an energy per nucleon at or above the
// table threshold, extrapolating with a power law beyond the last row.
func (p *PairProduction) lookup(epa float64) float64 {
	last := len(p.energy) - 1
	if epa >= p.energy[last] {
		return p.rate[last] * math.Pow(epa/p.energy[last], extrapolationIndex)
	}

	i := 1
	for p.energy[i] < epa {
		i++
	}
	f := (epa - p.energy[i-1]) / (p.energy[i] - p.energy[i-1])
	return p.rate[i-1] + f*(p.rate[i]-p.rate[i-1])
}

// EnergyLossLength returns the distance over which a nucleus (charge z,
// mass a) of energy e loses an e-fold of energy to pair production.
func (p *PairProduction) EnergyLossLength(z, a int, e float64) float64 {
	if z < 1 {
		return math.Inf(1)
	}
	epa := e / float64(a)
	if epa < p.energy[0] {
		return math.Inf(1)
	}
	rate := p.lookup(epa) * float64(z*z)
	return e / rate
}

func (p *PairProduction) Description() string { return p.desc }
