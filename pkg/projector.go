package gtpc

import (
	"fmt"
)

// Projector turns the energy deposits of consecutive track points into
// electrons and projects them straight onto the pad plane.
type Projector struct {
	config Configuration
	rng    *Random
	drift  ClosedFormDrift
	agg    *PadAggregator
}

// NewProjector checks the configuration and prepares the pad aggregation.
// Electrons outside the pad plane are clamped to its edges.
func NewProjector(config Configuration, plane PadPlane, rng *Random) (*Projector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, &ConfigError{Module: "projector", Field: "random", Err: ErrNoRandom}
	}
	bounds := Bounds{
		MinX: config.OffsetX,
		MaxX: config.OffsetX + 2*config.HalfSizeX,
		MinZ: config.OffsetZ,
		MaxZ: config.OffsetZ + 2*config.HalfSizeZ,
	}
	agg, err := NewPadAggregator(config, plane, ClampToBounds, bounds)
	if err != nil {
		return nil, err
	}
	return &Projector{
		config: config,
		rng:    rng,
		drift:  newClosedFormDrift(config),
		agg:    agg,
	}, nil
}

// ProcessEvent projects the points of one event. The returned output is
// owned by the Projector and valid until the next call. On a point logic
// error nothing of the event is kept.
func (p *Projector) ProcessEvent(eventID int, points []TrackPoint, tracks TrackStore) (*EventOutput, error) {
	p.agg.Reset(eventID)
	out := p.agg.Output()

	if points == nil {
		return nil, fmt.Errorf("projector: event %d: %w", eventID, ErrNilEvent)
	}
	if tracks == nil {
		return nil, fmt.Errorf("projector: event %d: %w", eventID, ErrNoTrackStore)
	}

	nPoints := len(points)
	out.Stats.Points = nPoints
	if p.config.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Event %d: processing %d points", eventID, nPoints), "projector")
	}
	if nPoints < 2 {
		if p.config.Verbosity > 0 {
			logger.Info("Not enough hits for digitization! (<2)", "projector")
		}
		return out, nil
	}

	fail := func(i int, pt TrackPoint, reason string) (*EventOutput, error) {
		p.agg.Reset(eventID)
		return nil, &PointLogicError{EventID: eventID, Index: i, TrackID: pt.TrackID, Reason: reason}
	}

	presentTrackID := -10
	readyToProject := false
	var seg Segment
	var prov Provenance

	for i, pt := range points {
		if pt.Status == Entering {
			// no energy deposited here, just the entrance coordinates
			track, err := tracks.Track(pt.TrackID)
			if err != nil {
				return fail(i, pt, err.Error())
			}
			presentTrackID = pt.TrackID
			seg.Pre = pt.Position()
			prov = provenanceOf(eventID, track)
			readyToProject = true
			continue
		}

		if presentTrackID != pt.TrackID {
			return fail(i, pt, fmt.Sprintf("%s point of track %d while following track %d",
				pt.Status, pt.TrackID, presentTrackID))
		}
		if !readyToProject {
			return fail(i, pt, fmt.Sprintf("%s point without entrance in the gas", pt.Status))
		}
		if pt.Status == Exiting || pt.Status == Disappeared {
			readyToProject = false
		}

		seg.Post = pt.Position()
		seg.TimeBeforeDrift = pt.Time

		generated := GenerateElectrons(pt.EnergyLoss, p.config.EIonization, p.config.FanoFactor, p.rng)
		out.Stats.Electrons += generated
		if p.config.Verbosity > 1 {
			message := fmt.Sprintf("Point %d (track %d, %s): %g GeV, %d electrons",
				i, pt.TrackID, pt.Status, pt.EnergyLoss, generated)
			logger.Info(message, "projector")
		}

		p.drift.Project(seg, generated, p.rng, func(arr Arrival) {
			if !p.agg.Add(arr, &prov) && p.config.Verbosity > 2 {
				message := fmt.Sprintf("Electron rejected at x=%g z=%g t=%g", arr.X, arr.Z, arr.Time)
				logger.Info(message, "projector")
			}
		})

		seg.Pre = seg.Post
	}

	if p.config.Verbosity > 0 {
		message := fmt.Sprintf("Event %d: produced %d %s records", eventID, out.Len(), out.Mode)
		logger.Info(message, "projector")
	}
	return out, nil
}
