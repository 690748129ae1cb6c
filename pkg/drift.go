package gtpc

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// FieldMap samples the magnetic field at a position [cm], in the units of
// the map.
type FieldMap interface {
	Field(pos r3.Vec) r3.Vec
}

// Electron is a drifting ionization electron.
type Electron struct {
	Pos  r3.Vec  // [cm]
	Time float64 // [ns]
}

// Arrival is where and when an electron reached the pad plane.
type Arrival struct {
	X, Z float64 // [cm]
	Time float64 // [ns]
}

// Segment is the part of a track between two consecutive points.
type Segment struct {
	Pre, Post r3.Vec
	// TimeBeforeDrift is the time of flight of the particle at the end of
	// the segment [ns].
	TimeBeforeDrift float64
}

// ClosedFormDrift projects the electrons of a segment straight down to the
// pad plane. Diffusion is computed once from the mean drift distance of the
// segment.
type ClosedFormDrift struct {
	DriftVelocity float64
	TransDiff     float64
	LongDiff      float64
	HalfSizeY     float64
}

func newClosedFormDrift(config Configuration) ClosedFormDrift {
	return ClosedFormDrift{
		DriftVelocity: config.DriftVelocity,
		TransDiff:     config.TransDiff,
		LongDiff:      config.LongDiff,
		HalfSizeY:     config.HalfSizeY,
	}
}

// Sigmas returns the longitudinal and transversal widths at the pad plane
// for a drift distance [cm].
func (d ClosedFormDrift) Sigmas(driftDistance float64) (sigmaLong, sigmaTrans float64) {
	driftDistance = math.Max(driftDistance, 0)
	sigmaLong = math.Sqrt(driftDistance * 2 * d.LongDiff / d.DriftVelocity)
	sigmaTrans = math.Sqrt(driftDistance * 2 * d.TransDiff / d.DriftVelocity)
	return sigmaLong, sigmaTrans
}

// Project drifts n electrons homogeneously distributed along the segment and
// calls emit for each arrival. Electron k (1..n) is born at Pre + k*step.
func (d ClosedFormDrift) Project(seg Segment, n int, rng *Random, emit func(Arrival)) {
	if n <= 0 {
		return
	}
	step := r3.Scale(1/float64(n), r3.Sub(seg.Post, seg.Pre))

	yApprox := (seg.Post.Y + seg.Pre.Y) / 2
	sigmaLong, sigmaTrans := d.Sigmas(yApprox + d.HalfSizeY)

	for ele := 1; ele <= n; ele++ {
		birth := r3.Add(seg.Pre, r3.Scale(float64(ele), step))
		driftTime := (birth.Y + d.HalfSizeY) / d.DriftVelocity
		emit(Arrival{
			X:    rng.Gaus(birth.X, sigmaTrans),
			Z:    rng.Gaus(birth.Z, sigmaTrans),
			Time: rng.Gaus(driftTime+seg.TimeBeforeDrift, sigmaLong/d.DriftVelocity),
		})
	}
}

// LangevinDrift integrates the drift of single electrons in fixed time
// steps, sampling the magnetic field at every step.
type LangevinDrift struct {
	Field         FieldMap
	FieldToTesla  float64
	DriftVelocity float64 // [cm/ns]
	TransDiff     float64 // [cm^2/ns]
	LongDiff      float64 // [cm^2/ns]
	EField        float64 // vertical [V/m]
	TimeStep      float64 // [ns]
	MaxSteps      int
	PlaneY        float64 // pad plane height [cm]
}

func newLangevinDrift(config Configuration, field FieldMap) LangevinDrift {
	return LangevinDrift{
		Field:         field,
		FieldToTesla:  config.FieldToTesla,
		DriftVelocity: config.DriftVelocity,
		TransDiff:     config.TransDiff,
		LongDiff:      config.LongDiff,
		EField:        config.DriftEField,
		TimeStep:      config.DriftTimeStep,
		MaxSteps:      config.MaxDriftSteps,
		PlaneY:        -config.HalfSizeY,
	}
}

// Mobility of the electrons [m2 s-1 V-1], tied to the nominal drift velocity.
func (d LangevinDrift) Mobility() float64 {
	return 1.e+7 * d.DriftVelocity / d.EField
}

// Velocity returns the drift velocity [m/s] for a vertical electric field
// and a magnetic field b [T], and the Lorentz factor 1/(1+mu^2 B^2). The
// vertical component is positive when the electron moves towards the pad
// plane.
func (d LangevinDrift) Velocity(b r3.Vec) (v r3.Vec, cteMod float64) {
	mu := d.Mobility()
	eY := d.EField
	moduleB := r3.Norm(b)
	cteMod = 1 / (1 + mu*mu*moduleB*moduleB)
	cteMult := mu * cteMod
	productEB := eY * b.Y

	v.X = cteMult * (mu*(eY*b.Z) + mu*mu*productEB*b.X)
	v.Y = cteMult * (eY + mu*mu*productEB*b.Y)
	v.Z = cteMult * (mu*(-eY*b.X) + mu*mu*productEB*b.Z)
	return v, cteMod
}

// planeTolerance absorbs the rounding of the shortened last step [cm].
const planeTolerance = 1e-9

// Drift moves the electron until it reaches the pad plane. Electrons
// diffusing through the plane are placed on it.
func (d LangevinDrift) Drift(e *Electron, rng *Random) error {
	for steps := 0; e.Pos.Y > d.PlaneY; steps++ {
		if steps >= d.MaxSteps {
			return &DriftError{Steps: steps, Position: [3]float64{e.Pos.X, e.Pos.Y, e.Pos.Z},
				Reason: "maximum number of drift steps exceeded"}
		}

		b := r3.Scale(d.FieldToTesla, d.Field.Field(e.Pos))
		v, cteMod := d.Velocity(b)
		// back to [cm/ns]
		v = r3.Scale(1.e-7, v)
		if !(v.Y > 0) {
			return &DriftError{Steps: steps, Position: [3]float64{e.Pos.X, e.Pos.Y, e.Pos.Z},
				Reason: "vertical drift velocity is not directed to the pad plane"}
		}

		dt := d.TimeStep
		landing := false
		if e.Pos.Y-v.Y*dt < d.PlaneY {
			dt = (e.Pos.Y - d.PlaneY) / v.Y
			landing = true
		}

		sigmaTransvStep := math.Sqrt(dt * 2 * d.TransDiff * cteMod)
		sigmaLongStep := math.Sqrt(dt * 2 * d.LongDiff)

		e.Pos.X = rng.Gaus(e.Pos.X+v.X*dt, sigmaTransvStep)
		e.Pos.Y = rng.Gaus(e.Pos.Y-v.Y*dt, sigmaLongStep)
		e.Pos.Z = rng.Gaus(e.Pos.Z+v.Z*dt, sigmaTransvStep)
		e.Time += dt
		if e.Pos.Y < d.PlaneY || (landing && e.Pos.Y-d.PlaneY < planeTolerance) {
			e.Pos.Y = d.PlaneY
		}
	}
	return nil
}
