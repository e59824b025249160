package goisingcore

import (
	"math"
	"math/rand"
)

// InitialState selects the spin configuration a fresh lattice starts from.
type InitialState int

const (
	Random InitialState = iota
	AllUp
	AllDown
)

func (s InitialState) Label() string {
	switch s {
	case AllUp:
		return "All Up  (+1)"
	case AllDown:
		return "All Down (-1)"
	default:
		return "Random"
	}
}

// ParseInitialState inverts Label. The labels are fixed; summary files
// written with one version must load with another.
func ParseInitialState(label string) (InitialState, bool) {
	switch label {
	case "Random":
		return Random, true
	case "All Up  (+1)":
		return AllUp, true
	case "All Down (-1)":
		return AllDown, true
	}
	return Random, false
}

func (s InitialState) Next() InitialState {
	switch s {
	case Random:
		return AllUp
	case AllUp:
		return AllDown
	default:
		return Random
	}
}

func (s InitialState) Prev() InitialState {
	switch s {
	case Random:
		return AllDown
	case AllUp:
		return Random
	default:
		return AllUp
	}
}

// Lattice is a square ±J random-bond Ising lattice with periodic boundaries.
// The bond grids are fixed for the lifetime of one disorder realization;
// only the spins mutate during a sweep.
type Lattice struct {
	spins       [][]int8
	size        int
	j           float64
	jHoriz      [][]float64
	jVert       [][]float64
	h           float64
	temperature float64
}

// NewLattice builds an L×L lattice at the given temperature. A fraction p of
// the 2·L² bonds (count = round(p·2·L²)) is negated to -J, chosen by a
// uniform shuffle drawn from rng.
func NewLattice(size int, j, p, h, temperature float64, init InitialState, rng *rand.Rand) *Lattice {
	spins := make([][]int8, size)
	for i := range spins {
		spins[i] = make([]int8, size)
		for jc := range spins[i] {
			switch init {
			case AllUp:
				spins[i][jc] = 1
			case AllDown:
				spins[i][jc] = -1
			default:
				if rng.Float64() < 0.5 {
					spins[i][jc] = -1
				} else {
					spins[i][jc] = 1
				}
			}
		}
	}
	jHoriz, jVert := buildBonds(size, j, p, rng)
	return &Lattice{
		spins:       spins,
		size:        size,
		j:           j,
		jHoriz:      jHoriz,
		jVert:       jVert,
		h:           h,
		temperature: temperature,
	}
}

// buildBonds flattens the 2·L² bond slots into a flag array, marks the target
// number of them as negated, shuffles, then fills the horizontal grid from
// the first L² flags and the vertical grid from the rest.
func buildBonds(size int, j, p float64, rng *rand.Rand) ([][]float64, [][]float64) {
	totalBonds := 2 * size * size
	targetNeg := int(math.Round(p * float64(totalBonds)))
	if targetNeg > totalBonds {
		targetNeg = totalBonds
	}
	flags := make([]bool, totalBonds)
	for k := 0; k < targetNeg; k++ {
		flags[k] = true
	}
	rng.Shuffle(len(flags), func(a, b int) {
		flags[a], flags[b] = flags[b], flags[a]
	})

	next := 0
	fill := func() [][]float64 {
		grid := make([][]float64, size)
		for i := range grid {
			grid[i] = make([]float64, size)
			for jc := range grid[i] {
				if flags[next] {
					grid[i][jc] = -j
				} else {
					grid[i][jc] = j
				}
				next++
			}
		}
		return grid
	}
	jHoriz := fill()
	jVert := fill()
	return jHoriz, jVert
}

func (m *Lattice) Size() int { return m.size }

func (m *Lattice) Spin(i, jc int) int8 { return m.spins[i][jc] }

// EnergyAtSite is the local energy contribution of site (i,jc) under
// periodic boundaries: the four incident bond couplings plus the field term.
func (m *Lattice) EnergyAtSite(i, jc int) float64 {
	l := m.size
	spin := float64(m.spins[i][jc])
	topI := (i + l - 1) % l
	bottomI := (i + 1) % l
	leftJ := (jc + l - 1) % l
	rightJ := (jc + 1) % l
	top := float64(m.spins[topI][jc])
	bottom := float64(m.spins[bottomI][jc])
	left := float64(m.spins[i][leftJ])
	right := float64(m.spins[i][rightJ])
	jTop := m.jVert[topI][jc]
	jBottom := m.jVert[i][jc]
	jLeft := m.jHoriz[i][leftJ]
	jRight := m.jHoriz[i][jc]
	return -spin*(jTop*top+jBottom*bottom+jLeft*left+jRight*right) - m.h*spin
}

// TotalEnergy counts each bond once (right and bottom bond per site) and
// subtracts the field contribution.
func (m *Lattice) TotalEnergy() float64 {
	l := m.size
	e := 0.0
	for i := 0; i < l; i++ {
		for jc := 0; jc < l; jc++ {
			spin := float64(m.spins[i][jc])
			right := float64(m.spins[i][(jc+1)%l])
			bottom := float64(m.spins[(i+1)%l][jc])
			e -= m.jHoriz[i][jc] * spin * right
			e -= m.jVert[i][jc] * spin * bottom
		}
	}
	return e - m.h*float64(m.TotalMagnetization())
}

// TotalMagnetization is the signed sum of all spins.
func (m *Lattice) TotalMagnetization() int64 {
	var sum int64
	for i := range m.spins {
		for _, s := range m.spins[i] {
			sum += int64(s)
		}
	}
	return sum
}

// MetropolisStep performs one single-spin-flip Metropolis trial: flip a
// uniformly random site unconditionally, then flip back when the move raises
// the energy and the acceptance draw fails exp(-ΔE/T).
func (m *Lattice) MetropolisStep(rng *rand.Rand) {
	i := rng.Intn(m.size)
	jc := rng.Intn(m.size)
	oldE := m.EnergyAtSite(i, jc)
	m.spins[i][jc] = -m.spins[i][jc]
	newE := m.EnergyAtSite(i, jc)
	deltaE := newE - oldE
	if deltaE > 0 && rng.Float64() >= math.Exp(-deltaE/m.temperature) {
		m.spins[i][jc] = -m.spins[i][jc]
	}
}
