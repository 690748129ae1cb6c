// Package field holds simple magnetic field maps for the drift simulation.
// Field values are in the units of the map (kG for GLAD).
package field

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Region is an axis-aligned box [cm]. Boundaries are inside.
type Region struct {
	Min, Max r3.Vec
}

// RegionFromLimits builds a region from xmin, xmax, ymin, ymax, zmin, zmax.
func RegionFromLimits(limits [6]float64) Region {
	return Region{
		Min: r3.Vec{X: limits[0], Y: limits[2], Z: limits[4]},
		Max: r3.Vec{X: limits[1], Y: limits[3], Z: limits[5]},
	}
}

func (r Region) Contains(p r3.Vec) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y &&
		p.Z >= r.Min.Z && p.Z <= r.Max.Z
}

// Constant is a uniform field inside Region and zero outside.
type Constant struct {
	B      r3.Vec
	Region Region
}

func NewConstant(b [3]float64, limits [6]float64) *Constant {
	return &Constant{
		B:      r3.Vec{X: b[0], Y: b[1], Z: b[2]},
		Region: RegionFromLimits(limits),
	}
}

func (c *Constant) Field(pos r3.Vec) r3.Vec {
	if !c.Region.Contains(pos) {
		return r3.Vec{}
	}
	return c.B
}

// Map is anything that can be sampled.
type Map interface {
	Field(pos r3.Vec) r3.Vec
}

// Scaled multiplies another map by a factor, -1 flips the polarity.
type Scaled struct {
	Map   Map
	Scale float64
}

func (s Scaled) Field(pos r3.Vec) r3.Vec {
	return r3.Scale(s.Scale, s.Map.Field(pos))
}
