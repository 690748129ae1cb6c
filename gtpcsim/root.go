package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	gtpc "github.com/r3broot/gtpc_go/pkg"
	"github.com/r3broot/gtpc_go/pkg/paramdb"
)

var version = "dev"

type options struct {
	configFile string
	fileIn     string
	fileOut    string
	seed       uint64
	maxEvents  int
	skip       int
	verbosity  int
	mode       string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "gtpcsim",
		Short: "Drift simulation for the GTPC prototype",
		Long: `Converts the energy deposits of simulated tracks, or synthetic laser rays,
into ionization electrons, drifts them to the pad plane and stores the
charge collected by every pad.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "configuration file (.json or .toml)")
	flags.StringVarP(&opts.fileIn, "input", "i", "", "input events (JSON stream)")
	flags.StringVarP(&opts.fileOut, "output", "o", "", "output file (.h5, .hdf5, .db or .sqlite)")
	flags.Uint64Var(&opts.seed, "seed", 0, "random seed")
	flags.IntVar(&opts.maxEvents, "max-events", 0, "maximum number of events")
	flags.IntVar(&opts.skip, "skip", 0, "events to skip")
	flags.IntVarP(&opts.verbosity, "verbosity", "v", 0, "verbosity level")
	flags.StringVar(&opts.mode, "mode", "", "output mode (caldata or projpoint)")

	rootCmd.AddCommand(newProjectCmd(opts))
	rootCmd.AddCommand(newLaserCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// loadConfiguration reads the configuration file over defaults, applies the
// command line overrides and the parameter database, and validates the result.
func loadConfiguration(cmd *cobra.Command, opts *options, defaults gtpc.Configuration) (gtpc.Configuration, error) {
	config := defaults
	if opts.configFile != "" {
		var err error
		config, err = gtpc.LoadConfigurationOver(opts.configFile, defaults)
		if err != nil {
			return config, fmt.Errorf("error reading configuration file: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		config.FileIn = opts.fileIn
	}
	if flags.Changed("output") {
		config.FileOut = opts.fileOut
	}
	if flags.Changed("seed") {
		config.Seed = opts.seed
	}
	if flags.Changed("max-events") {
		config.MaxEvents = opts.maxEvents
	}
	if flags.Changed("skip") {
		config.Skip = opts.skip
	}
	if flags.Changed("verbosity") {
		config.Verbosity = opts.verbosity
	}
	if flags.Changed("mode") {
		if err := config.OutputMode.UnmarshalText([]byte(opts.mode)); err != nil {
			return config, err
		}
	}

	if config.Verbosity > 0 && opts.configFile != "" {
		logger.Info(fmt.Sprintf("Reading configuration file: %s", opts.configFile), "main")
	}

	if !config.NoDB {
		dbConn, err := paramdb.ConnectToDatabase(config.User, config.Passwd, config.Host, config.DBName)
		if err != nil {
			return config, fmt.Errorf("error connection to database: %w", err)
		}
		defer dbConn.Close()
		if err := paramdb.LoadParameters(dbConn, config.RunNumber, &config); err != nil {
			return config, err
		}
		if config.Verbosity > 0 {
			logger.Info(fmt.Sprintf("Parameters of run %d read from DB", config.RunNumber), "database")
		}
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	if config.Verbosity > 0 {
		printConfiguration(config, logger)
	}
	return config, nil
}

func openInput(config gtpc.Configuration) (*EventReader, func() error, error) {
	file, err := os.Open(config.FileIn)
	if err != nil {
		return nil, nil, &gtpc.ErrOpenFile{Filename: config.FileIn, Err: err}
	}
	return NewEventReader(file, config), file.Close, nil
}
