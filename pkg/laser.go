package gtpc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// LaserGenerator produces straight calibration rays, drifts a fixed number
// of electrons from random points of the ray through the magnetic field and
// collects them on virtual pads.
type LaserGenerator struct {
	config Configuration
	rng    *Random
	drift  LangevinDrift
	frame  Frame
	agg    *PadAggregator
}

// NewLaserGenerator prepares the Langevin drift. Electrons arriving outside
// the pad plane are discarded.
func NewLaserGenerator(config Configuration, field FieldMap, plane PadPlane, rng *Random) (*LaserGenerator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if field == nil {
		return nil, &ConfigError{Module: "lasergen", Field: "field", Err: ErrNoFieldMap}
	}
	if rng == nil {
		return nil, &ConfigError{Module: "lasergen", Field: "random", Err: ErrNoRandom}
	}
	if config.Laser.NumRayPoints < 0 || config.Laser.ElectronsPerPoint < 0 {
		return nil, &ConfigError{Module: "lasergen", Field: "laser",
			Reason: "number of points and electrons must not be negative"}
	}
	bounds := Bounds{
		MaxX: 2 * config.HalfSizeX,
		MaxZ: 2 * config.HalfSizeZ,
	}
	agg, err := NewPadAggregator(config, plane, RejectOutOfBounds, bounds)
	if err != nil {
		return nil, err
	}
	return &LaserGenerator{
		config: config,
		rng:    rng,
		drift:  newLangevinDrift(config, field),
		frame:  newFrame(config),
		agg:    agg,
	}, nil
}

// Direction returns the unit vector of the ray.
func (l *LaserGenerator) Direction() r3.Vec {
	alpha := l.config.Laser.Alpha * math.Pi / 180
	beta := l.config.Laser.Beta * math.Pi / 180
	return r3.Vec{
		X: math.Cos(beta) * math.Sin(alpha),
		Y: math.Sin(beta),
		Z: math.Cos(beta) * math.Cos(alpha),
	}
}

func (l *LaserGenerator) injection() r3.Vec {
	return r3.Vec{X: l.config.Laser.XIn, Y: l.config.Laser.YIn, Z: l.config.Laser.ZIn}
}

// RayLength is the distance from the injection point to the face of the
// active volume where the ray leaves it.
func (l *LaserGenerator) RayLength() float64 {
	d := l.Direction()
	p := l.injection()
	size := r3.Vec{X: 2 * l.config.HalfSizeX, Y: 2 * l.config.HalfSizeY, Z: 2 * l.config.HalfSizeZ}

	rMin := math.Inf(1)
	for _, axis := range [3][3]float64{
		{d.X, p.X, size.X},
		{d.Y, p.Y, size.Y},
		{d.Z, p.Z, size.Z},
	} {
		dir, start, length := axis[0], axis[1], axis[2]
		if math.Abs(dir) < 1e-12 {
			continue
		}
		face := 0.
		if dir > 0 {
			face = length
		}
		rMin = math.Min(rMin, (face-start)/dir)
	}
	if math.IsInf(rMin, 1) || rMin < 0 {
		return 0
	}
	return rMin
}

// RayPoint returns the point of the ray at distance r, in the laser frame.
func (l *LaserGenerator) RayPoint(r float64) r3.Vec {
	return r3.Add(l.injection(), r3.Scale(r, l.Direction()))
}

// ProcessEvent generates the ray of one event. The provenance of the records
// is taken from the last input point, if any.
func (l *LaserGenerator) ProcessEvent(eventID int, points []TrackPoint, tracks TrackStore) (*EventOutput, error) {
	l.agg.Reset(eventID)
	out := l.agg.Output()

	prov := Provenance{EventID: eventID}
	if len(points) > 0 {
		if tracks == nil {
			return nil, fmt.Errorf("lasergen: event %d: %w", eventID, ErrNoTrackStore)
		}
		last := points[len(points)-1]
		track, err := tracks.Track(last.TrackID)
		if err != nil {
			return nil, fmt.Errorf("lasergen: event %d: %w", eventID, err)
		}
		prov = provenanceOf(eventID, track)
	}
	out.Stats.Points = len(points)

	rMax := l.RayLength()
	nEle := FixedElectrons(l.config.Laser.ElectronsPerPoint)
	if l.config.Verbosity > 0 {
		message := fmt.Sprintf("Event %d: ray of %g cm, %d points of %d electrons",
			eventID, rMax, l.config.Laser.NumRayPoints, nEle)
		logger.Info(message, "lasergen")
	}

	for k := 0; k < l.config.Laser.NumRayPoints; k++ {
		r := l.rng.Uniform(0, rMax)
		start := l.frame.ToFieldMap(l.RayPoint(r))
		if l.config.Verbosity > 1 {
			message := fmt.Sprintf("Ray point %d at r=%g: x=%g y=%g z=%g", k, r, start.X, start.Y, start.Z)
			logger.Info(message, "lasergen")
		}

		for ele := 0; ele < nEle; ele++ {
			out.Stats.Electrons++
			e := Electron{Pos: start}
			if err := l.drift.Drift(&e, l.rng); err != nil {
				out.Stats.NonTerminated++
				logger.Error(fmt.Sprintf("lasergen: event %d, ray point %d, electron %d: %v", eventID, k, ele, err))
				continue
			}
			x, z := l.frame.ToPadPlane(e.Pos)
			if !l.agg.Add(Arrival{X: x, Z: z, Time: e.Time}, &prov) && l.config.Verbosity > 2 {
				logger.Info(fmt.Sprintf("Electron rejected at x=%g z=%g", x, z), "lasergen")
			}
		}
	}

	if l.config.Verbosity > 0 {
		message := fmt.Sprintf("Event %d: produced %d %s records", eventID, out.Len(), out.Mode)
		logger.Info(message, "lasergen")
	}
	return out, nil
}
