package gtpc

import (
	"errors"
	"fmt"
)

var (
	ErrNoFieldMap   = errors.New("no magnetic field map")
	ErrNoPadPlane   = errors.New("no pad plane")
	ErrNoTrackStore = errors.New("no MC track store")
	ErrNoRandom     = errors.New("no random stream")
	ErrNilEvent     = errors.New("no input event")
)

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// ConfigError reports an invalid or missing setup parameter.
type ConfigError struct {
	Module string
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("configuration error in %q", e.Field)
	if e.Module != "" {
		msg = e.Module + ": " + msg
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// PointLogicError means the track points of an event do not follow the
// entering/depositing/exiting order. The whole event is discarded.
type PointLogicError struct {
	EventID int
	Index   int
	TrackID int
	Reason  string
}

func (e *PointLogicError) Error() string {
	return fmt.Sprintf("projector: point logic error in event %d, point %d (track %d): %s",
		e.EventID, e.Index, e.TrackID, e.Reason)
}

// DriftError is returned when an electron does not reach the pad plane.
type DriftError struct {
	Steps    int
	Position [3]float64
	Reason   string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("drift: electron stopped after %d steps at (%g, %g, %g): %s",
		e.Steps, e.Position[0], e.Position[1], e.Position[2], e.Reason)
}
