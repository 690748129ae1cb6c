package gtpc

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Frame relates the laser frame (origin at a corner of the active volume),
// the field-map frame where electrons drift, and the pad-plane frame.
type Frame struct {
	Angle     float64 // rotation of the chamber around the vertical axis [rad]
	HalfSizeY float64 // [cm]
	HalfSizeZ float64 // [cm]
	OffsetZ   float64 // position of the field map origin along z [cm]
}

func newFrame(config Configuration) Frame {
	return Frame{
		Angle:     config.Laser.TargetAngle * math.Pi / 180,
		HalfSizeY: config.HalfSizeY,
		HalfSizeZ: config.HalfSizeZ,
		OffsetZ:   config.Laser.FieldMapOffsetZ,
	}
}

func (f Frame) zShift() float64 {
	return f.OffsetZ - f.HalfSizeZ
}

// ToFieldMap converts a point of the laser frame to the field-map frame.
func (f Frame) ToFieldMap(p r3.Vec) r3.Vec {
	sin, cos := math.Sincos(-f.Angle)
	return r3.Vec{
		X: cos*p.X + sin*p.Z,
		Y: p.Y - f.HalfSizeY,
		Z: f.zShift() - sin*p.X + cos*p.Z,
	}
}

// ToPadPlane converts a field-map position to pad-plane coordinates.
func (f Frame) ToPadPlane(p r3.Vec) (x, z float64) {
	sin, cos := math.Sincos(f.Angle)
	dz := p.Z - f.zShift()
	x = cos*p.X + sin*dz
	z = -sin*p.X + cos*dz
	return x, z
}
