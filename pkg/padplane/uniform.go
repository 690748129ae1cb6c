// Package padplane provides rectangular pad plane partitions.
package padplane

import (
	"fmt"
	"math"
)

// Uniform is a grid of equal rectangular pads covering [0, Width] x
// [0, Length]. Pad ids run along x first: id = iz*NX + ix. Like histogram
// bins, the upper edge of the plane belongs to the last pad.
type Uniform struct {
	Width  float64 // along x [cm]
	Length float64 // along z [cm]
	NX     int
	NZ     int
}

// NewUniform builds a grid of nx * nz pads.
func NewUniform(width, length float64, nx, nz int) (*Uniform, error) {
	if !(width > 0) || !(length > 0) || math.IsInf(width, 0) || math.IsInf(length, 0) {
		return nil, fmt.Errorf("padplane: invalid size %gx%g cm", width, length)
	}
	if nx <= 0 || nz <= 0 {
		return nil, fmt.Errorf("padplane: invalid number of pads %dx%d", nx, nz)
	}
	return &Uniform{Width: width, Length: length, NX: nx, NZ: nz}, nil
}

// NewPrototype builds the pad plane of the prototype chamber: square pads of
// padSize over 2*halfX x 2*halfZ. A partial last column or row is kept.
func NewPrototype(halfX, halfZ, padSize float64) (*Uniform, error) {
	if !(padSize > 0) {
		return nil, fmt.Errorf("padplane: invalid pad size %g cm", padSize)
	}
	width, length := 2*halfX, 2*halfZ
	return NewUniform(width, length, nPads(width, padSize), nPads(length, padSize))
}

// NewVirtual builds the virtual pads used by the laser generator.
func NewVirtual(width, length, padsPerCm float64) (*Uniform, error) {
	if !(padsPerCm > 0) {
		return nil, fmt.Errorf("padplane: invalid pad density %g pads/cm", padsPerCm)
	}
	return NewUniform(width, length, nPads(width, 1/padsPerCm), nPads(length, 1/padsPerCm))
}

func nPads(length, size float64) int {
	// 8.8/0.2 is 44.00000000000001
	return int(math.Ceil(length/size - 1e-9))
}

func (u *Uniform) NumPads() int {
	return u.NX * u.NZ
}

// Resolve returns the pad containing (x, z).
func (u *Uniform) Resolve(x, z float64) (int, bool) {
	if !(x >= 0 && x <= u.Width && z >= 0 && z <= u.Length) {
		return -1, false
	}
	ix := min(int(x/u.Width*float64(u.NX)), u.NX-1)
	iz := min(int(z/u.Length*float64(u.NZ)), u.NZ-1)
	return iz*u.NX + ix, true
}

// Center returns the center of a pad.
func (u *Uniform) Center(id int) (x, z float64, ok bool) {
	if id < 0 || id >= u.NumPads() {
		return 0, 0, false
	}
	ix, iz := id%u.NX, id/u.NX
	x = (float64(ix) + 0.5) * u.Width / float64(u.NX)
	z = (float64(iz) + 0.5) * u.Length / float64(u.NZ)
	return x, z, true
}
