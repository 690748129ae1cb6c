package gtpc

import (
	"math"

	"golang.org/x/exp/constraints"
)

// GenerateElectrons converts an energy deposit into a number of primary
// electrons. The count fluctuates around energy/eIonization with a width of
// sqrt(fano*n).
func GenerateElectrons(energy, eIonization, fano float64, rng *Random) int {
	if !(eIonization > 0) {
		return 0
	}
	n := energy / eIonization
	if !(n > 0) || math.IsInf(n, 0) {
		return 0
	}
	sigma := math.Sqrt(math.Max(fano, 0) * n)
	generated := math.Round(rng.Gaus(n, sigma))
	if generated < 0 {
		return 0
	}
	return int(generated)
}

// FixedElectrons is the generator of the laser mode: always count electrons.
func FixedElectrons(count int) int {
	return max(count, 0)
}

func clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
