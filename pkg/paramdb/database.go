// Package paramdb reads the gas, geometry and electronics parameters of a
// run from the parameter database.
package paramdb

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx

	gtpc "github.com/r3broot/gtpc_go/pkg"
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type GasPar struct {
	EIonization   float64 `db:"EIonization"`
	DriftVelocity float64 `db:"DriftVelocity"`
	TransDiff     float64 `db:"TransDiff"`
	LongDiff      float64 `db:"LongDiff"`
	FanoFactor    float64 `db:"FanoFactor"`
}

// GeoPar sizes are full lengths of the active region.
type GeoPar struct {
	ActiveRegionX float64 `db:"ActiveRegionX"`
	ActiveRegionY float64 `db:"ActiveRegionY"`
	ActiveRegionZ float64 `db:"ActiveRegionZ"`
	GladOffsetX   float64 `db:"GladOffsetX"`
	GladOffsetZ   float64 `db:"GladOffsetZ"`
}

type ElecPar struct {
	DriftEField   float64 `db:"DriftEField"`
	DriftTimeStep float64 `db:"DriftTimeStep"`
	TimeBinSize   float64 `db:"TimeBinSize"`
}

type Parameters struct {
	Gas  GasPar
	Geo  GeoPar
	Elec ElecPar
}

const (
	gasQuery  = "SELECT EIonization, DriftVelocity, TransDiff, LongDiff, FanoFactor FROM GTPCGasPar WHERE MinRun <= ? and MaxRun >= ?"
	geoQuery  = "SELECT ActiveRegionX, ActiveRegionY, ActiveRegionZ, GladOffsetX, GladOffsetZ FROM GTPCGeoPar WHERE MinRun <= ? and MaxRun >= ?"
	elecQuery = "SELECT DriftEField, DriftTimeStep, TimeBinSize FROM GTPCElecPar WHERE MinRun <= ? and MaxRun >= ?"
)

func getParameter[T any](db *sqlx.DB, query string, runNumber int) (T, error) {
	var result T
	err := db.Get(&result, db.Rebind(query), runNumber, runNumber)
	if err != nil {
		return result, fmt.Errorf("error querying database: %w", err)
	}
	return result, nil
}

// GetParameters reads the parameter containers valid for a run.
func GetParameters(db *sqlx.DB, runNumber int) (Parameters, error) {
	var params Parameters
	var err error
	params.Gas, err = getParameter[GasPar](db, gasQuery, runNumber)
	if err != nil {
		return params, fmt.Errorf("error getting gas parameters for run %d: %w", runNumber, err)
	}
	params.Geo, err = getParameter[GeoPar](db, geoQuery, runNumber)
	if err != nil {
		return params, fmt.Errorf("error getting geometry parameters for run %d: %w", runNumber, err)
	}
	params.Elec, err = getParameter[ElecPar](db, elecQuery, runNumber)
	if err != nil {
		return params, fmt.Errorf("error getting electronics parameters for run %d: %w", runNumber, err)
	}
	return params, nil
}

// Apply overrides the configuration with the database values.
func (p Parameters) Apply(config *gtpc.Configuration) {
	config.EIonization = p.Gas.EIonization
	config.DriftVelocity = p.Gas.DriftVelocity
	config.TransDiff = p.Gas.TransDiff
	config.LongDiff = p.Gas.LongDiff
	config.FanoFactor = p.Gas.FanoFactor

	config.HalfSizeX = p.Geo.ActiveRegionX / 2
	config.HalfSizeY = p.Geo.ActiveRegionY / 2
	config.HalfSizeZ = p.Geo.ActiveRegionZ / 2
	config.OffsetX = p.Geo.GladOffsetX
	config.OffsetZ = p.Geo.GladOffsetZ

	config.DriftEField = p.Elec.DriftEField
	config.DriftTimeStep = p.Elec.DriftTimeStep
	config.TimeBinSize = p.Elec.TimeBinSize
}

// LoadParameters reads the parameters of a run into the configuration.
func LoadParameters(db *sqlx.DB, runNumber int, config *gtpc.Configuration) error {
	params, err := GetParameters(db, runNumber)
	if err != nil {
		return err
	}
	params.Apply(config)
	return nil
}
