package paramdb

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	gtpc "github.com/r3broot/gtpc_go/pkg"
)

const schema = `
CREATE TABLE GTPCGasPar (MinRun INTEGER, MaxRun INTEGER, EIonization REAL, DriftVelocity REAL,
	TransDiff REAL, LongDiff REAL, FanoFactor REAL);
CREATE TABLE GTPCGeoPar (MinRun INTEGER, MaxRun INTEGER, ActiveRegionX REAL, ActiveRegionY REAL,
	ActiveRegionZ REAL, GladOffsetX REAL, GladOffsetZ REAL);
CREATE TABLE GTPCElecPar (MinRun INTEGER, MaxRun INTEGER, DriftEField REAL, DriftTimeStep REAL,
	TimeBinSize REAL);
INSERT INTO GTPCGasPar VALUES (0, 99, 15e-9, 0.0048, 2.16e-6, 2.16e-6, 2.0);
INSERT INTO GTPCGasPar VALUES (100, 199, 26e-9, 0.005, 3e-6, 4e-6, 0.2);
INSERT INTO GTPCGeoPar VALUES (0, 199, 8.8, 29.4, 25.6, -12.5, 250.3);
INSERT INTO GTPCElecPar VALUES (0, 199, 15000, 50, 20);
`

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "params.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(schema)
	require.NoError(t, err)
	return db
}

func TestLoadParameters(t *testing.T) {
	db := setupTestDB(t)
	config := gtpc.DefaultConfiguration()
	require.NoError(t, LoadParameters(db, 150, &config))

	assert.Equal(t, 26e-9, config.EIonization)
	assert.Equal(t, 0.005, config.DriftVelocity)
	assert.Equal(t, 4e-6, config.LongDiff)
	assert.Equal(t, 0.2, config.FanoFactor)
	assert.Equal(t, 4.4, config.HalfSizeX)
	assert.Equal(t, 14.7, config.HalfSizeY)
	assert.Equal(t, 12.8, config.HalfSizeZ)
	assert.Equal(t, -12.5, config.OffsetX)
	assert.Equal(t, 250.3, config.OffsetZ)
	assert.Equal(t, 15000., config.DriftEField)
	assert.Equal(t, 50., config.DriftTimeStep)
	assert.Equal(t, 20., config.TimeBinSize)
	assert.NoError(t, config.Validate())
}

func TestGetParametersRunRange(t *testing.T) {
	db := setupTestDB(t)
	params, err := GetParameters(db, 99)
	require.NoError(t, err)
	assert.Equal(t, 15e-9, params.Gas.EIonization)

	_, err = GetParameters(db, 500)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}
