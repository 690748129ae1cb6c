// Package sqlwriter stores the per-pad records of a run in a SQLite file.
package sqlwriter

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	gtpc "github.com/r3broot/gtpc_go/pkg"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	mode TEXT NOT NULL,
	seed INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	events INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS events (
	run TEXT NOT NULL REFERENCES runs(id),
	event INTEGER NOT NULL,
	points INTEGER,
	electrons INTEGER,
	clamped INTEGER,
	out_of_bounds INTEGER,
	invalid_pad INTEGER,
	non_terminated INTEGER,
	PRIMARY KEY (run, event)
);
CREATE TABLE IF NOT EXISTS caldata (
	run TEXT NOT NULL REFERENCES runs(id),
	event INTEGER NOT NULL,
	pad INTEGER NOT NULL,
	charge INTEGER NOT NULL,
	adc BLOB NOT NULL,
	PRIMARY KEY (run, event, pad)
);
CREATE TABLE IF NOT EXISTS projpoints (
	run TEXT NOT NULL REFERENCES runs(id),
	event INTEGER NOT NULL,
	pad INTEGER NOT NULL,
	charge INTEGER NOT NULL,
	time_entries INTEGER,
	time_sum REAL,
	time_sum_sq REAL,
	time_min REAL,
	time_max REAL,
	pdg_code INTEGER,
	mother_id INTEGER,
	vertex_x REAL,
	vertex_y REAL,
	vertex_z REAL,
	px REAL,
	py REAL,
	pz REAL,
	PRIMARY KEY (run, event, pad)
);
`

type RunRow struct {
	ID        string    `db:"id"`
	Mode      string    `db:"mode"`
	Seed      int64     `db:"seed"`
	CreatedAt time.Time `db:"created_at"`
	Events    int       `db:"events"`
}

type EventRow struct {
	Run           string `db:"run"`
	Event         int    `db:"event"`
	Points        int    `db:"points"`
	Electrons     int    `db:"electrons"`
	Clamped       int    `db:"clamped"`
	OutOfBounds   int    `db:"out_of_bounds"`
	InvalidPad    int    `db:"invalid_pad"`
	NonTerminated int    `db:"non_terminated"`
}

type CalDataRow struct {
	Run    string `db:"run"`
	Event  int    `db:"event"`
	Pad    int    `db:"pad"`
	Charge int    `db:"charge"`
	ADC    []byte `db:"adc"`
}

type ProjPointRow struct {
	Run         string  `db:"run"`
	Event       int     `db:"event"`
	Pad         int     `db:"pad"`
	Charge      int     `db:"charge"`
	TimeEntries int     `db:"time_entries"`
	TimeSum     float64 `db:"time_sum"`
	TimeSumSq   float64 `db:"time_sum_sq"`
	TimeMin     float64 `db:"time_min"`
	TimeMax     float64 `db:"time_max"`
	PdgCode     int     `db:"pdg_code"`
	MotherID    int     `db:"mother_id"`
	VertexX     float64 `db:"vertex_x"`
	VertexY     float64 `db:"vertex_y"`
	VertexZ     float64 `db:"vertex_z"`
	Px          float64 `db:"px"`
	Py          float64 `db:"py"`
	Pz          float64 `db:"pz"`
}

const (
	insertEvent = `INSERT INTO events (run, event, points, electrons, clamped, out_of_bounds, invalid_pad, non_terminated)
		VALUES (:run, :event, :points, :electrons, :clamped, :out_of_bounds, :invalid_pad, :non_terminated)`
	insertCalData   = `INSERT INTO caldata (run, event, pad, charge, adc) VALUES (:run, :event, :pad, :charge, :adc)`
	insertProjPoint = `INSERT INTO projpoints (run, event, pad, charge, time_entries, time_sum, time_sum_sq, time_min,
		time_max, pdg_code, mother_id, vertex_x, vertex_y, vertex_z, px, py, pz)
		VALUES (:run, :event, :pad, :charge, :time_entries, :time_sum, :time_sum_sq, :time_min,
		:time_max, :pdg_code, :mother_id, :vertex_x, :vertex_y, :vertex_z, :px, :py, :pz)`
)

// Writer appends the events of one run, identified by a random UUID, to a
// SQLite database. Several runs can share a file. The number of events
// written is stored in the run row on Close.
type Writer struct {
	db         *sqlx.DB
	Filename   string
	RunID      uuid.UUID
	Mode       gtpc.OutputMode
	EvtCounter int
}

func NewWriter(filename string, mode gtpc.OutputMode, seed uint64) (*Writer, error) {
	db, err := sqlx.Open("sqlite", filename+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("error opening database %q: %w", filename, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating tables in %q: %w", filename, err)
	}

	w := &Writer{
		db:       db,
		Filename: filename,
		RunID:    uuid.New(),
		Mode:     mode,
	}
	run := RunRow{
		ID:        w.RunID.String(),
		Mode:      mode.String(),
		Seed:      int64(seed),
		CreatedAt: time.Now().UTC(),
	}
	_, err = db.NamedExec(`INSERT INTO runs (id, mode, seed, created_at) VALUES (:id, :mode, :seed, :created_at)`, run)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error registering run: %w", err)
	}
	return w, nil
}

// EncodeADC packs an ADC histogram as little endian uint16.
func EncodeADC(adc []uint16) []byte {
	buf := make([]byte, 0, 2*len(adc))
	for _, v := range adc {
		buf = binary.LittleEndian.AppendUint16(buf, v)
	}
	return buf
}

func DecodeADC(data []byte) []uint16 {
	adc := make([]uint16, len(data)/2)
	for i := range adc {
		adc[i] = binary.LittleEndian.Uint16(data[2*i:])
	}
	return adc
}

func (w *Writer) WriteEvent(out *gtpc.EventOutput) error {
	tx, err := w.db.Beginx()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	if err := w.writeEvent(tx, out); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error writing event %d: %w", out.EventID, err)
	}
	w.EvtCounter++
	return nil
}

func (w *Writer) writeEvent(tx *sqlx.Tx, out *gtpc.EventOutput) error {
	run := w.RunID.String()
	stats := EventRow{
		Run:           run,
		Event:         out.EventID,
		Points:        out.Stats.Points,
		Electrons:     out.Stats.Electrons,
		Clamped:       out.Stats.Clamped,
		OutOfBounds:   out.Stats.OutOfBounds,
		InvalidPad:    out.Stats.InvalidPad,
		NonTerminated: out.Stats.NonTerminated,
	}
	if _, err := tx.NamedExec(insertEvent, stats); err != nil {
		return fmt.Errorf("error writing event %d: %w", out.EventID, err)
	}

	for _, c := range out.CalData {
		row := CalDataRow{
			Run:    run,
			Event:  out.EventID,
			Pad:    c.PadID,
			Charge: c.Charge,
			ADC:    EncodeADC(c.ADC),
		}
		if _, err := tx.NamedExec(insertCalData, row); err != nil {
			return fmt.Errorf("error writing pad %d of event %d: %w", c.PadID, out.EventID, err)
		}
	}
	for _, p := range out.ProjPoints {
		row := ProjPointRow{
			Run:         run,
			Event:       out.EventID,
			Pad:         p.VirtualPadID,
			Charge:      p.Charge,
			TimeEntries: p.Time.Entries,
			TimeSum:     p.Time.Sum,
			TimeSumSq:   p.Time.SumSq,
			TimeMin:     p.Time.Min,
			TimeMax:     p.Time.Max,
			PdgCode:     p.PdgCode,
			MotherID:    p.MotherID,
			VertexX:     p.Vertex.X,
			VertexY:     p.Vertex.Y,
			VertexZ:     p.Vertex.Z,
			Px:          p.Momentum.X,
			Py:          p.Momentum.Y,
			Pz:          p.Momentum.Z,
		}
		if _, err := tx.NamedExec(insertProjPoint, row); err != nil {
			return fmt.Errorf("error writing pad %d of event %d: %w", p.VirtualPadID, out.EventID, err)
		}
	}
	return nil
}

// DB gives read access to the database, for reports and tests.
func (w *Writer) DB() *sqlx.DB {
	return w.db
}

func (w *Writer) Close() error {
	var errs []error
	if _, err := w.db.Exec("UPDATE runs SET events = ? WHERE id = ?", w.EvtCounter, w.RunID.String()); err != nil {
		errs = append(errs, fmt.Errorf("error updating run %s: %w", w.RunID, err))
	}
	if err := w.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing database %q: %w", w.Filename, err))
	}
	return errors.Join(errs...)
}
