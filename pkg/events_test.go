package gtpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFromCode(t *testing.T) {
	for code, want := range map[int]TrackStatus{
		11000:    Entering,
		10010010: Entering,
		10010000: Entering,
		10011000: Entering,
		10100:    Exiting,
		1000000:  Disappeared,
		0:        Inside,
		10000:    Inside,
	} {
		assert.Equal(t, want, StatusFromCode(code), "code %d", code)
	}
}

func TestTrackStatusJSON(t *testing.T) {
	var points []TrackPoint
	data := `[{"track_id": 2, "status": 11000}, {"track_id": 2, "status": "exiting", "energy_loss": 1e-6}]`
	require.NoError(t, json.Unmarshal([]byte(data), &points))
	require.Len(t, points, 2)
	assert.Equal(t, Entering, points[0].Status)
	assert.Equal(t, Exiting, points[1].Status)
	assert.Equal(t, 1e-6, points[1].EnergyLoss)

	out, err := json.Marshal(Disappeared)
	require.NoError(t, err)
	assert.Equal(t, `"disappeared"`, string(out))

	var s TrackStatus
	assert.Error(t, json.Unmarshal([]byte(`"flying"`), &s))
}

func TestTracks(t *testing.T) {
	tracks := Tracks{{PdgCode: 2212}}
	track, err := tracks.Track(0)
	require.NoError(t, err)
	assert.Equal(t, 2212, track.PdgCode)

	_, err = tracks.Track(1)
	assert.Error(t, err)
	_, err = tracks.Track(-1)
	assert.Error(t, err)
}

func TestTimeSummary(t *testing.T) {
	var s TimeSummary
	assert.Zero(t, s.Mean())
	assert.Zero(t, s.StdDev())

	s.Add(2, 1)
	s.Add(4, 3)
	s.Add(100, 0)
	assert.Equal(t, 4, s.Entries)
	assert.InDelta(t, 3.5, s.Mean(), 1e-12)
	assert.Equal(t, 2., s.Min)
	assert.Equal(t, 4., s.Max)
}
