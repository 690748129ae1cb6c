package gtpc

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Random is the single random stream of a run. Draws are sequential, so the
// same seed reproduces the same output.
type Random struct {
	src rand.Source
}

func NewRandom(seed uint64) *Random {
	return &Random{src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
}

// Gaus draws from a normal distribution. A zero sigma returns mu.
func (r *Random) Gaus(mu, sigma float64) float64 {
	if sigma <= 0 {
		return mu
	}
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: r.src}.Rand()
}

// Uniform draws from [min, max).
func (r *Random) Uniform(min, max float64) float64 {
	if max <= min {
		return min
	}
	return distuv.Uniform{Min: min, Max: max, Src: r.src}.Rand()
}
