package main

import (
	"fmt"

	gtpc "github.com/r3broot/gtpc_go/pkg"
)

func printConfiguration(config gtpc.Configuration, logger Logger) {
	info := func(format string, args ...any) {
		logger.Info(fmt.Sprintf(format, args...), "config")
	}
	info("File in: %s", config.FileIn)
	info("File out: %s", config.FileOut)
	info("No DB: %t", config.NoDB)
	if !config.NoDB {
		info("Host: %s", config.Host)
		info("DB name: %s", config.DBName)
		info("Run number: %d", config.RunNumber)
	}
	info("Output mode: %s", config.OutputMode)
	info("Ionization energy: %g GeV", config.EIonization)
	info("Drift velocity: %g cm/ns", config.DriftVelocity)
	info("Diffusion (trans, long): %g, %g cm^2/ns", config.TransDiff, config.LongDiff)
	info("Fano factor: %g", config.FanoFactor)
	info("Half sizes: %g x %g x %g cm", config.HalfSizeX, config.HalfSizeY, config.HalfSizeZ)
	info("Pad plane offsets: x=%g z=%g cm", config.OffsetX, config.OffsetZ)
	info("Drift E field: %g V/m", config.DriftEField)
	info("Drift time step: %g ns, max steps: %d", config.DriftTimeStep, config.MaxDriftSteps)
	info("Time bins: %d of %g ns", config.NumTimeBins, config.TimeBinSize)
	info("Seed: %d", config.Seed)
	info("Skip: %d", config.Skip)
	info("Max events: %d", config.MaxEvents)
	info("Verbosity: %d", config.Verbosity)
}

func printLaserConfiguration(config gtpc.Configuration, logger Logger) {
	info := func(format string, args ...any) {
		logger.Info(fmt.Sprintf(format, args...), "config")
	}
	laser := config.Laser
	info("Laser angles: alpha=%g beta=%g deg", laser.Alpha, laser.Beta)
	info("Laser injection: (%g, %g, %g) cm", laser.XIn, laser.YIn, laser.ZIn)
	info("Laser points: %d of %d electrons", laser.NumRayPoints, laser.ElectronsPerPoint)
	info("Virtual pads per cm: %g", laser.PadsPerCm)
	info("Target angle: %g deg, field map offset z: %g cm", laser.TargetAngle, laser.FieldMapOffsetZ)
	info("Field: (%g, %g, %g) x %g", config.Field[0], config.Field[1], config.Field[2], config.FieldScale)
}
