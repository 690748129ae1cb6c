package main

import (
	"encoding/json"
	"fmt"
	"io"

	gtpc "github.com/r3broot/gtpc_go/pkg"
)

// EventReader decodes a stream of JSON events, honoring the skip and
// max events settings.
type EventReader struct {
	decoder   *json.Decoder
	Skip      int
	MaxEvents int
	Verbosity int
	EvtCount  int
}

func NewEventReader(r io.Reader, config gtpc.Configuration) *EventReader {
	return &EventReader{
		decoder:   json.NewDecoder(r),
		Skip:      config.Skip,
		MaxEvents: config.MaxEvents,
		Verbosity: config.Verbosity,
		EvtCount:  -1,
	}
}

// NextEvent returns io.EOF at the end of the stream or after MaxEvents
// events counted from the start of the file.
func (f *EventReader) NextEvent() (gtpc.Event, error) {
	for {
		var event gtpc.Event
		if err := f.decoder.Decode(&event); err != nil {
			if err == io.EOF {
				return event, io.EOF
			}
			return event, fmt.Errorf("error decoding event %d: %w", f.EvtCount+1, err)
		}
		f.EvtCount++
		if f.EvtCount >= f.MaxEvents {
			if f.Verbosity > 0 {
				logger.Info("Max events reached", "fileReader")
			}
			return event, io.EOF
		}
		if f.EvtCount < f.Skip {
			if f.Verbosity > 0 {
				logger.Info(fmt.Sprintf("Skipping event %d with ID %d", f.EvtCount, event.EventID), "fileReader")
			}
			continue
		}
		if f.Verbosity > 0 {
			logger.Info(fmt.Sprintf("Reading event %d with ID %d", f.EvtCount, event.EventID), "fileReader")
		}
		if event.Points == nil {
			event.Points = []gtpc.TrackPoint{}
		}
		return event, nil
	}
}
