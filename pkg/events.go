package gtpc

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// TrackStatus is the transition of a track point with respect to the gas volume.
type TrackStatus int

const (
	Inside TrackStatus = iota
	Entering
	Exiting
	Disappeared
)

func (s TrackStatus) String() string {
	switch s {
	case Inside:
		return "inside"
	case Entering:
		return "entering"
	case Exiting:
		return "exiting"
	case Disappeared:
		return "disappeared"
	default:
		return "unknown"
	}
}

func (s TrackStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a status name or a packed transport status code.
func (s *TrackStatus) UnmarshalJSON(data []byte) error {
	var code int
	if err := json.Unmarshal(data, &code); err == nil {
		*s = StatusFromCode(code)
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for _, v := range []TrackStatus{Inside, Entering, Exiting, Disappeared} {
		if v.String() == name {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("invalid TrackStatus: %s", name)
}

// StatusFromCode converts the packed status word written by the particle
// transport (one decimal digit per flag) to a TrackStatus.
func StatusFromCode(code int) TrackStatus {
	switch code {
	case 11000, 10010010, 10010000, 10011000:
		return Entering
	case 10100:
		return Exiting
	case 1000000:
		return Disappeared
	default:
		return Inside
	}
}

// TrackPoint is a step of a simulated particle inside the gas.
type TrackPoint struct {
	EventID    int         `json:"event_id"`
	TrackID    int         `json:"track_id"`
	X          float64     `json:"x"`           // [cm]
	Y          float64     `json:"y"`           // [cm]
	Z          float64     `json:"z"`           // [cm]
	Time       float64     `json:"time"`        // [ns]
	EnergyLoss float64     `json:"energy_loss"` // [GeV]
	Status     TrackStatus `json:"status"`
}

func (p TrackPoint) Position() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// MCTrack keeps the provenance of a simulated particle.
type MCTrack struct {
	PdgCode  int     `json:"pdg_code"`
	MotherID int     `json:"mother_id"`
	StartX   float64 `json:"start_x"`
	StartY   float64 `json:"start_y"`
	StartZ   float64 `json:"start_z"`
	Px       float64 `json:"px"`
	Py       float64 `json:"py"`
	Pz       float64 `json:"pz"`
}

// TrackStore gives access to MC tracks by track id.
type TrackStore interface {
	Track(id int) (MCTrack, error)
}

// Tracks is a TrackStore indexed by position.
type Tracks []MCTrack

func (t Tracks) Track(id int) (MCTrack, error) {
	if id < 0 || id >= len(t) {
		return MCTrack{}, fmt.Errorf("no MC track with id %d (%d tracks)", id, len(t))
	}
	return t[id], nil
}

// Event is the input of one event.
type Event struct {
	EventID int          `json:"event_id"`
	Points  []TrackPoint `json:"points"`
	Tracks  Tracks       `json:"tracks"`
}

// Provenance is copied into every ProjPoint created from a track.
type Provenance struct {
	EventID  int
	PdgCode  int
	MotherID int
	Vertex   r3.Vec // [cm]
	Momentum r3.Vec // [GeV/c]
}

func provenanceOf(eventID int, track MCTrack) Provenance {
	return Provenance{
		EventID:  eventID,
		PdgCode:  track.PdgCode,
		MotherID: track.MotherID,
		Vertex:   r3.Vec{X: track.StartX, Y: track.StartY, Z: track.StartZ},
		Momentum: r3.Vec{X: track.Px, Y: track.Py, Z: track.Pz},
	}
}

// CalData is the compact per-pad record: an ADC histogram of arrival times.
type CalData struct {
	PadID  int
	Charge int
	ADC    []uint16
}

// ProjPoint is the per-pad record carrying track provenance.
type ProjPoint struct {
	VirtualPadID int
	Charge       int
	Time         TimeSummary // [us]
	Provenance
}

// TimeSummary accumulates the arrival time distribution of a pad.
type TimeSummary struct {
	Entries int
	Sum     float64
	SumSq   float64
	Min     float64
	Max     float64
}

func (s *TimeSummary) Add(t float64, weight int) {
	if weight <= 0 {
		return
	}
	if s.Entries == 0 {
		s.Min, s.Max = t, t
	} else {
		s.Min = math.Min(s.Min, t)
		s.Max = math.Max(s.Max, t)
	}
	w := float64(weight)
	s.Entries += weight
	s.Sum += w * t
	s.SumSq += w * t * t
}

func (s TimeSummary) Mean() float64 {
	if s.Entries == 0 {
		return 0
	}
	return s.Sum / float64(s.Entries)
}

func (s TimeSummary) StdDev() float64 {
	if s.Entries < 2 {
		return 0
	}
	mean := s.Mean()
	variance := s.SumSq/float64(s.Entries) - mean*mean
	if variance < 0 {
		return 0
	}
	return math.Sqrt(variance)
}

// EventStats counts what happened to the electrons of an event.
type EventStats struct {
	Points        int
	Electrons     int
	Clamped       int
	OutOfBounds   int
	InvalidPad    int
	NonTerminated int
}

// EventOutput is handed to the writers once per event. Only the slice
// matching Mode is filled.
type EventOutput struct {
	EventID    int
	Mode       OutputMode
	CalData    []CalData
	ProjPoints []ProjPoint
	Stats      EventStats
}

// Len returns the number of pad records.
func (o *EventOutput) Len() int {
	if o.Mode == CalDataOutput {
		return len(o.CalData)
	}
	return len(o.ProjPoints)
}

// Clear empties the output keeping the allocated storage.
func (o *EventOutput) Clear() {
	o.EventID = 0
	o.CalData = o.CalData[:0]
	o.ProjPoints = o.ProjPoints[:0]
	o.Stats = EventStats{}
}

// TotalCharge sums the charge of all pad records.
func (o *EventOutput) TotalCharge() int {
	total := 0
	for _, c := range o.CalData {
		total += c.Charge
	}
	for _, p := range o.ProjPoints {
		total += p.Charge
	}
	return total
}
