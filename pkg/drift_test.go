package gtpc

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

type uniformField r3.Vec

func (f uniformField) Field(r3.Vec) r3.Vec { return r3.Vec(f) }

func TestClosedFormSigmas(t *testing.T) {
	d := ClosedFormDrift{DriftVelocity: 0.0048, TransDiff: 2.16e-6, LongDiff: 2.16e-6, HalfSizeY: 14.7}
	long, trans := d.Sigmas(14.7)
	want := math.Sqrt(14.7 * 2 * 2.16e-6 / 0.0048)
	assert.InDelta(t, want, long, 1e-12)
	assert.InDelta(t, want, trans, 1e-12)

	long, trans = d.Sigmas(-1)
	assert.Zero(t, long)
	assert.Zero(t, trans)
}

func TestClosedFormProjectBirthPositions(t *testing.T) {
	d := ClosedFormDrift{DriftVelocity: 0.005, HalfSizeY: 10}
	seg := Segment{
		Pre:             r3.Vec{X: 0, Y: 0, Z: 0},
		Post:            r3.Vec{X: 1, Y: 2, Z: 3},
		TimeBeforeDrift: 7,
	}
	var arrivals []Arrival
	d.Project(seg, 4, NewRandom(1), func(a Arrival) { arrivals = append(arrivals, a) })
	require.Len(t, arrivals, 4)

	for k, a := range arrivals {
		f := float64(k+1) / 4
		assert.InDelta(t, f*1, a.X, 1e-12)
		assert.InDelta(t, f*3, a.Z, 1e-12)
		assert.InDelta(t, (f*2+10)/0.005+7, a.Time, 1e-9)
	}

	called := false
	d.Project(seg, 0, NewRandom(1), func(Arrival) { called = true })
	assert.False(t, called)
}

func TestLangevinVelocityNoField(t *testing.T) {
	config := DefaultConfiguration()
	d := newLangevinDrift(config, uniformField{})
	v, cteMod := d.Velocity(r3.Vec{})
	assert.Equal(t, 1., cteMod)
	assert.Zero(t, v.X)
	assert.Zero(t, v.Z)
	// back to the nominal drift velocity
	assert.InDelta(t, config.DriftVelocity, v.Y*1e-7, 1e-15)
}

func TestLangevinVelocityDeflection(t *testing.T) {
	config := DefaultConfiguration()
	d := newLangevinDrift(config, uniformField{})
	mu := d.Mobility()
	v, cteMod := d.Velocity(r3.Vec{Y: 1})
	assert.InDelta(t, 1/(1+mu*mu), cteMod, 1e-12)
	// a field parallel to E does not change the drift
	assert.Zero(t, v.X)
	assert.Zero(t, v.Z)
	assert.InDelta(t, mu*config.DriftEField, v.Y, 1e-6)

	v, _ = d.Velocity(r3.Vec{Z: 1})
	assert.Greater(t, v.X, 0.)
	assert.Less(t, v.Y, mu*config.DriftEField)
}

func TestLangevinAgreesWithClosedForm(t *testing.T) {
	config := DefaultConfiguration()
	config.MaxDriftSteps = 1000
	langevin := newLangevinDrift(config, uniformField{})
	closed := newClosedFormDrift(config)

	start := r3.Vec{X: 1, Y: 5, Z: 3}
	seg := Segment{Pre: start, Post: start}
	rng := NewRandom(99)

	const n = 4000
	var xs, zs, ts, refXs, refZs, refTs []float64
	for i := 0; i < n; i++ {
		e := Electron{Pos: start}
		require.NoError(t, langevin.Drift(&e, rng))
		require.Equal(t, langevin.PlaneY, e.Pos.Y)
		xs = append(xs, e.Pos.X)
		zs = append(zs, e.Pos.Z)
		ts = append(ts, e.Time)
	}
	closed.Project(seg, n, rng, func(a Arrival) {
		refXs = append(refXs, a.X)
		refZs = append(refZs, a.Z)
		refTs = append(refTs, a.Time)
	})

	driftTime := (start.Y + config.HalfSizeY) / config.DriftVelocity
	assert.InDelta(t, start.X, stat.Mean(xs, nil), 0.01)
	assert.InDelta(t, start.X, stat.Mean(refXs, nil), 0.01)
	assert.InDelta(t, start.Z, stat.Mean(zs, nil), 0.01)
	assert.InDelta(t, start.Z, stat.Mean(refZs, nil), 0.01)
	assert.InDelta(t, driftTime, stat.Mean(ts, nil), 5)
	assert.InDelta(t, driftTime, stat.Mean(refTs, nil), 5)
	assert.InDelta(t, stat.StdDev(refXs, nil), stat.StdDev(xs, nil), 0.01)
	assert.InDelta(t, stat.StdDev(refTs, nil), stat.StdDev(ts, nil), 5)
}

func TestLangevinAgreesWithClosedFormWithoutDiffusion(t *testing.T) {
	config := DefaultConfiguration()
	config.TransDiff = 0
	config.LongDiff = 0
	langevin := newLangevinDrift(config, uniformField{})
	closed := newClosedFormDrift(config)

	start := r3.Vec{X: 1.234, Y: 7.7, Z: -3.3}
	e := Electron{Pos: start}
	require.NoError(t, langevin.Drift(&e, NewRandom(1)))

	var arrivals []Arrival
	closed.Project(Segment{Pre: start, Post: start}, 1, NewRandom(1), func(a Arrival) {
		arrivals = append(arrivals, a)
	})
	require.Len(t, arrivals, 1)

	assert.Equal(t, start.X, e.Pos.X)
	assert.Equal(t, start.Z, e.Pos.Z)
	assert.Equal(t, arrivals[0].X, e.Pos.X)
	assert.Equal(t, arrivals[0].Z, e.Pos.Z)
	assert.InDelta(t, arrivals[0].Time, e.Time, 1e-9)
	assert.InDelta(t, (start.Y+config.HalfSizeY)/config.DriftVelocity, e.Time, 1e-9)
}

func TestLangevinMagneticFieldReducesTransverseDiffusion(t *testing.T) {
	config := DefaultConfiguration()
	// 1 T along the electric field
	d := newLangevinDrift(config, uniformField{Y: 10})
	_, cteMod := d.Velocity(r3.Vec{Y: 1})
	require.Less(t, cteMod, 0.5)

	start := r3.Vec{X: 1, Y: 0, Z: -2}
	rng := NewRandom(7)
	const n = 4000
	var xs, zs, ts []float64
	for i := 0; i < n; i++ {
		e := Electron{Pos: start}
		require.NoError(t, d.Drift(&e, rng))
		xs = append(xs, e.Pos.X)
		zs = append(zs, e.Pos.Z)
		ts = append(ts, e.Time)
	}

	driftTime := stat.Mean(ts, nil)
	// no deflection
	assert.InDelta(t, config.HalfSizeY/config.DriftVelocity, driftTime, 5)
	assert.InDelta(t, start.X, stat.Mean(xs, nil), 0.005)
	assert.InDelta(t, start.Z, stat.Mean(zs, nil), 0.005)

	want := math.Sqrt(driftTime * 2 * config.TransDiff * cteMod)
	free := math.Sqrt(driftTime * 2 * config.TransDiff)
	assert.InEpsilon(t, want, stat.StdDev(xs, nil), 0.05)
	assert.InEpsilon(t, want, stat.StdDev(zs, nil), 0.05)
	assert.Less(t, stat.StdDev(xs, nil), free/2)
}

func TestLangevinStepCap(t *testing.T) {
	config := DefaultConfiguration()
	config.MaxDriftSteps = 3
	d := newLangevinDrift(config, uniformField{})

	e := Electron{Pos: r3.Vec{Y: 10}}
	err := d.Drift(&e, NewRandom(1))
	var driftErr *DriftError
	require.True(t, errors.As(err, &driftErr))
	assert.Equal(t, 3, driftErr.Steps)
	assert.InDelta(t, 300, e.Time, 1e-9)
}

func TestLangevinWrongDirection(t *testing.T) {
	config := DefaultConfiguration()
	config.DriftVelocity = -0.0048
	d := newLangevinDrift(config, uniformField{})

	e := Electron{Pos: r3.Vec{Y: 10}}
	err := d.Drift(&e, NewRandom(1))
	var driftErr *DriftError
	require.True(t, errors.As(err, &driftErr))
	assert.Zero(t, driftErr.Steps)
}

func TestLangevinAlreadyOnPlane(t *testing.T) {
	config := DefaultConfiguration()
	d := newLangevinDrift(config, uniformField{})
	e := Electron{Pos: r3.Vec{Y: d.PlaneY}}
	require.NoError(t, d.Drift(&e, NewRandom(1)))
	assert.Zero(t, e.Time)
}
