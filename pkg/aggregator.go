package gtpc

import (
	"fmt"
	"math"
)

// PadPlane partitions the readout plane into pads. Coordinates are local to
// the pad plane [cm].
type PadPlane interface {
	Resolve(x, z float64) (int, bool)
	Center(id int) (x, z float64, ok bool)
	NumPads() int
}

// BoundsPolicy decides what happens to electrons arriving outside the pad
// plane.
type BoundsPolicy int

const (
	// ClampToBounds moves the electron onto the nearest edge.
	ClampToBounds BoundsPolicy = iota
	// RejectOutOfBounds discards the electron. The upper edges are outside.
	RejectOutOfBounds
)

func (p BoundsPolicy) String() string {
	switch p {
	case ClampToBounds:
		return "clamp"
	case RejectOutOfBounds:
		return "reject"
	default:
		return "unknown"
	}
}

// Bounds is a rectangle on the pad plane, in the frame of the arrivals [cm].
type Bounds struct {
	MinX, MaxX float64
	MinZ, MaxZ float64
}

func (b Bounds) contains(x, z float64) bool {
	return x >= b.MinX && x < b.MaxX && z >= b.MinZ && z < b.MaxZ
}

// PadAggregator merges arrivals into one record per pad for the current event.
type PadAggregator struct {
	plane     PadPlane
	policy    BoundsPolicy
	bounds    Bounds
	collector collector
	out       *EventOutput
}

// NewPadAggregator builds the aggregator for an output mode. The arrival
// positions are shifted by (bounds.MinX, bounds.MinZ) before pad resolution.
func NewPadAggregator(config Configuration, plane PadPlane, policy BoundsPolicy, bounds Bounds) (*PadAggregator, error) {
	if plane == nil {
		return nil, &ConfigError{Module: "aggregator", Field: "pad_plane", Err: ErrNoPadPlane}
	}
	if !(bounds.MaxX > bounds.MinX) || !(bounds.MaxZ > bounds.MinZ) {
		return nil, &ConfigError{Module: "aggregator", Field: "bounds",
			Reason: fmt.Sprintf("empty pad plane bounds %+v", bounds)}
	}

	out := &EventOutput{Mode: config.OutputMode}
	a := &PadAggregator{
		plane:  plane,
		policy: policy,
		bounds: bounds,
		out:    out,
	}
	switch config.OutputMode {
	case CalDataOutput:
		a.collector = &calDataCollector{
			out:         out,
			index:       make(map[int]int),
			timeBinSize: config.TimeBinSize,
			numTimeBins: config.NumTimeBins,
		}
	case ProjPointOutput:
		a.collector = &projPointCollector{
			out:   out,
			index: make(map[int]int),
		}
	default:
		return nil, &ConfigError{Module: "aggregator", Field: "output_mode",
			Reason: fmt.Sprintf("unknown mode %d", config.OutputMode)}
	}
	return a, nil
}

// Reset clears the records of the previous event.
func (a *PadAggregator) Reset(eventID int) {
	a.collector.reset()
	a.out.EventID = eventID
}

// Output returns the records of the current event. The returned value is
// reused by the next Reset.
func (a *PadAggregator) Output() *EventOutput {
	return a.out
}

// Add places one arrival. prov is copied into new provenance-rich records.
// It reports whether the electron was kept.
func (a *PadAggregator) Add(arr Arrival, prov *Provenance) bool {
	x, z := arr.X, arr.Z
	switch a.policy {
	case ClampToBounds:
		cx := clamp(x, a.bounds.MinX, a.bounds.MaxX)
		cz := clamp(z, a.bounds.MinZ, a.bounds.MaxZ)
		if cx != x || cz != z {
			a.out.Stats.Clamped++
		}
		x, z = cx, cz
	case RejectOutOfBounds:
		if !a.bounds.contains(x, z) {
			a.out.Stats.OutOfBounds++
			return false
		}
	}

	padID, ok := a.plane.Resolve(x-a.bounds.MinX, z-a.bounds.MinZ)
	if !ok || padID < 0 || padID >= a.plane.NumPads() {
		a.out.Stats.InvalidPad++
		return false
	}
	a.collector.add(padID, arr.Time, prov)
	return true
}

type collector interface {
	add(padID int, time float64, prov *Provenance)
	reset()
}

type calDataCollector struct {
	out         *EventOutput
	index       map[int]int
	timeBinSize float64
	numTimeBins int
}

// timeBin converts an arrival time [ns] to an ADC slot. Underflows go to the
// first slot and overflows to the last one.
func (c *calDataCollector) timeBin(time float64) int {
	bin := time / c.timeBinSize
	if math.IsNaN(bin) {
		return 0
	}
	return int(clamp(bin, 0, float64(c.numTimeBins-1)))
}

func (c *calDataCollector) add(padID int, time float64, _ *Provenance) {
	bin := c.timeBin(time)
	if i, found := c.index[padID]; found {
		rec := &c.out.CalData[i]
		rec.Charge++
		if rec.ADC[bin] < math.MaxUint16 {
			rec.ADC[bin]++
		}
		return
	}

	n := len(c.out.CalData)
	if n < cap(c.out.CalData) {
		c.out.CalData = c.out.CalData[:n+1]
	} else {
		c.out.CalData = append(c.out.CalData, CalData{})
	}
	rec := &c.out.CalData[n]
	if cap(rec.ADC) >= c.numTimeBins {
		rec.ADC = rec.ADC[:c.numTimeBins]
		clear(rec.ADC)
	} else {
		rec.ADC = make([]uint16, c.numTimeBins)
	}
	rec.PadID = padID
	rec.Charge = 1
	rec.ADC[bin] = 1
	c.index[padID] = n
}

func (c *calDataCollector) reset() {
	clear(c.index)
	c.out.Clear()
}

type projPointCollector struct {
	out   *EventOutput
	index map[int]int
}

func (c *projPointCollector) add(padID int, time float64, prov *Provenance) {
	// ns to us
	t := time / 1000
	if i, found := c.index[padID]; found {
		rec := &c.out.ProjPoints[i]
		rec.Charge++
		rec.Time.Add(t, 1)
		return
	}

	rec := ProjPoint{VirtualPadID: padID, Charge: 1}
	rec.Time.Add(t, 1)
	if prov != nil {
		rec.Provenance = *prov
	}
	c.index[padID] = len(c.out.ProjPoints)
	c.out.ProjPoints = append(c.out.ProjPoints, rec)
}

func (c *projPointCollector) reset() {
	clear(c.index)
	c.out.Clear()
}
