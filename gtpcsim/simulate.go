package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	gtpc "github.com/r3broot/gtpc_go/pkg"
	"github.com/r3broot/gtpc_go/pkg/field"
	"github.com/r3broot/gtpc_go/pkg/padplane"
)

type producer interface {
	ProcessEvent(eventID int, points []gtpc.TrackPoint, tracks gtpc.TrackStore) (*gtpc.EventOutput, error)
}

func newProjectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "project",
		Short: "Project the track points of simulated events on the pad plane",
		Long: `Reads the track points of every event, generates the ionization electrons
of each energy deposit and projects them straight down to the pad plane
with diffusion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := loadConfiguration(cmd, opts, gtpc.DefaultConfiguration())
			if err != nil {
				return err
			}
			if config.FileIn == "" {
				return errors.New("project needs an input file")
			}
			plane, err := padplane.NewPrototype(config.HalfSizeX, config.HalfSizeZ, config.PadSize)
			if err != nil {
				return err
			}
			gtpc.SetLogger(logger)
			projector, err := gtpc.NewProjector(config, plane, gtpc.NewRandom(config.Seed))
			if err != nil {
				return err
			}
			return run(cmd, config, projector, "projector")
		},
	}
}

func newLaserCmd(opts *options) *cobra.Command {
	var events int
	cmd := &cobra.Command{
		Use:   "laser",
		Short: "Generate laser calibration events",
		Long: `Generates straight laser rays through the active volume and drifts the
electrons of random ray points through the magnetic field to virtual pads.
With an input file, one ray is produced per input event. Projected points
are stored unless another mode is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := loadConfiguration(cmd, opts, gtpc.LaserConfiguration())
			if err != nil {
				return err
			}
			if config.Verbosity > 0 {
				printLaserConfiguration(config, logger)
			}
			plane, err := padplane.NewVirtual(2*config.HalfSizeX, 2*config.HalfSizeZ, config.Laser.PadsPerCm)
			if err != nil {
				return err
			}
			fieldMap := field.Scaled{
				Map:   field.NewConstant(config.Field, config.FieldRegion),
				Scale: config.FieldScale,
			}
			gtpc.SetLogger(logger)
			laser, err := gtpc.NewLaserGenerator(config, fieldMap, plane, gtpc.NewRandom(config.Seed))
			if err != nil {
				return err
			}
			if config.FileIn == "" {
				return runWithoutInput(cmd, config, laser, events)
			}
			return run(cmd, config, laser, "lasergen")
		},
	}
	cmd.Flags().IntVarP(&events, "events", "n", 1, "number of rays without input file")
	return cmd
}

func run(cmd *cobra.Command, config gtpc.Configuration, p producer, module string) error {
	reader, closeInput, err := openInput(config)
	if err != nil {
		return err
	}
	defer closeInput()

	writer, err := newWriter(config)
	if err != nil {
		return err
	}

	summary := &runSummary{}
	for {
		event, err := reader.NextEvent()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Join(err, closeWriter(writer))
		}
		if err := processEvent(p, writer, event.EventID, event.Points, event.Tracks, summary, module); err != nil {
			return errors.Join(err, closeWriter(writer))
		}
	}
	return finish(cmd, writer, summary)
}

func runWithoutInput(cmd *cobra.Command, config gtpc.Configuration, p producer, events int) error {
	writer, err := newWriter(config)
	if err != nil {
		return err
	}
	summary := &runSummary{}
	for i := config.Skip; i < min(events, config.MaxEvents); i++ {
		if err := processEvent(p, writer, i, nil, nil, summary, "lasergen"); err != nil {
			return errors.Join(err, closeWriter(writer))
		}
	}
	return finish(cmd, writer, summary)
}

func processEvent(p producer, writer gtpc.Writer, eventID int, points []gtpc.TrackPoint,
	tracks gtpc.TrackStore, summary *runSummary, module string) error {
	out, err := p.ProcessEvent(eventID, points, tracks)
	if err != nil {
		message := fmt.Errorf("%s: error processing event %d: %w", module, eventID, err)
		logger.Error(message.Error())
		return message
	}
	summary.add(out)
	if writer != nil {
		if err := writer.WriteEvent(out); err != nil {
			return fmt.Errorf("writer: %w", err)
		}
	}
	return nil
}

func closeWriter(writer gtpc.Writer) error {
	if writer == nil {
		return nil
	}
	return writer.Close()
}

func finish(cmd *cobra.Command, writer gtpc.Writer, summary *runSummary) error {
	if err := closeWriter(writer); err != nil {
		return err
	}
	cmd.Printf("Total events processed: %s\n", summary)
	return nil
}
