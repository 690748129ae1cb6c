package main

import (
	"fmt"
	"path/filepath"
	"strings"

	gtpc "github.com/r3broot/gtpc_go/pkg"
	"github.com/r3broot/gtpc_go/pkg/hdf5writer"
	"github.com/r3broot/gtpc_go/pkg/sqlwriter"
)

// newWriter picks the output format from the file extension. An empty name
// means no output.
func newWriter(config gtpc.Configuration) (gtpc.Writer, error) {
	if config.FileOut == "" {
		return nil, nil
	}
	switch strings.ToLower(filepath.Ext(config.FileOut)) {
	case ".h5", ".hdf5":
		return hdf5writer.NewWriter(config.FileOut, config)
	case ".db", ".sqlite":
		return sqlwriter.NewWriter(config.FileOut, config.OutputMode, config.Seed)
	default:
		return nil, fmt.Errorf("unknown output format for %q", config.FileOut)
	}
}

// runSummary accumulates the statistics of all the events of a run.
type runSummary struct {
	Events  int
	Records int
	Charge  int
	Stats   gtpc.EventStats
}

func (s *runSummary) add(out *gtpc.EventOutput) {
	s.Events++
	s.Records += out.Len()
	s.Charge += out.TotalCharge()
	s.Stats.Points += out.Stats.Points
	s.Stats.Electrons += out.Stats.Electrons
	s.Stats.Clamped += out.Stats.Clamped
	s.Stats.OutOfBounds += out.Stats.OutOfBounds
	s.Stats.InvalidPad += out.Stats.InvalidPad
	s.Stats.NonTerminated += out.Stats.NonTerminated
}

func (s *runSummary) String() string {
	return fmt.Sprintf("%d events, %d pad records, %d electrons generated, %d collected "+
		"(clamped %d, out of bounds %d, invalid pad %d, not terminated %d)",
		s.Events, s.Records, s.Stats.Electrons, s.Charge,
		s.Stats.Clamped, s.Stats.OutOfBounds, s.Stats.InvalidPad, s.Stats.NonTerminated)
}
