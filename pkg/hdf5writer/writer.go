// Package hdf5writer stores the per-pad records of a run in an HDF5 file.
package hdf5writer

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"

	gtpc "github.com/r3broot/gtpc_go/pkg"
)

// Writer layout:
//
//	/GTPC/events      one row per event with its counters
//	/GTPC/caldata     pad records (caldata mode)
//	/GTPC/adc         [rows, NumTimeBins] uint16, aligned with caldata
//	/GTPC/projpoints  pad records (projpoint mode)
type Writer struct {
	File           *hdf5.File
	Filename       string
	Mode           gtpc.OutputMode
	NumTimeBins    int
	GTPCGroup      *hdf5.Group
	EventTable     *hdf5.Dataset
	CalDataTable   *hdf5.Dataset
	ADCArray       *hdf5.Dataset
	ProjPointTable *hdf5.Dataset
}

func NewWriter(filename string, config gtpc.Configuration) (*Writer, error) {
	w := &Writer{
		Filename:    filename,
		Mode:        config.OutputMode,
		NumTimeBins: config.NumTimeBins,
	}
	var err error
	w.File, err = openFile(filename)
	if err != nil {
		return nil, err
	}
	w.GTPCGroup, err = w.File.CreateGroup("GTPC")
	if err != nil {
		return nil, errors.Join(fmt.Errorf("error creating group GTPC: %w", err), w.Close())
	}

	level := config.CompressionLevel
	w.EventTable, err = createTable(w.GTPCGroup, "events", EventHDF5{}, level)
	if err != nil {
		return nil, errors.Join(err, w.Close())
	}
	switch w.Mode {
	case gtpc.CalDataOutput:
		w.CalDataTable, err = createTable(w.GTPCGroup, "caldata", CalDataHDF5{}, level)
		if err == nil {
			w.ADCArray, err = create2dArray(w.GTPCGroup, "adc", w.NumTimeBins, level)
		}
	case gtpc.ProjPointOutput:
		w.ProjPointTable, err = createTable(w.GTPCGroup, "projpoints", ProjPointHDF5{}, level)
	}
	if err != nil {
		return nil, errors.Join(err, w.Close())
	}
	return w, nil
}

func (w *Writer) WriteEvent(out *gtpc.EventOutput) error {
	evt := EventHDF5{
		evt_number:     int32(out.EventID),
		n_records:      int32(out.Len()),
		electrons:      int32(out.Stats.Electrons),
		clamped:        int32(out.Stats.Clamped),
		out_of_bounds:  int32(out.Stats.OutOfBounds),
		invalid_pad:    int32(out.Stats.InvalidPad),
		non_terminated: int32(out.Stats.NonTerminated),
	}
	if err := writeRowsToTable(w.EventTable, []EventHDF5{evt}); err != nil {
		return fmt.Errorf("error writing event %d: %w", out.EventID, err)
	}

	var err error
	switch w.Mode {
	case gtpc.CalDataOutput:
		err = w.writeCalData(out)
	case gtpc.ProjPointOutput:
		err = w.writeProjPoints(out)
	}
	if err != nil {
		return fmt.Errorf("error writing event %d: %w", out.EventID, err)
	}
	return nil
}

func (w *Writer) writeCalData(out *gtpc.EventOutput) error {
	n := len(out.CalData)
	if n == 0 {
		return nil
	}
	// The array MUST be allocated at creation, if not, HDF5 will panic
	rows := make([]CalDataHDF5, n)
	adc := make([]uint16, n*w.NumTimeBins)
	for i, c := range out.CalData {
		rows[i] = CalDataHDF5{
			evt_number: int32(out.EventID),
			pad_id:     int32(c.PadID),
			charge:     int32(c.Charge),
		}
		copy(adc[i*w.NumTimeBins:(i+1)*w.NumTimeBins], c.ADC)
	}
	if err := writeRowsToTable(w.CalDataTable, rows); err != nil {
		return err
	}
	return appendRows(w.ADCArray, adc, uint(n), uint(w.NumTimeBins))
}

func (w *Writer) writeProjPoints(out *gtpc.EventOutput) error {
	rows := make([]ProjPointHDF5, len(out.ProjPoints))
	for i, p := range out.ProjPoints {
		rows[i] = ProjPointHDF5{
			evt_number:   int32(out.EventID),
			pad_id:       int32(p.VirtualPadID),
			charge:       int32(p.Charge),
			time_entries: int32(p.Time.Entries),
			time_sum:     p.Time.Sum,
			time_sum_sq:  p.Time.SumSq,
			time_min:     p.Time.Min,
			time_max:     p.Time.Max,
			pdg_code:     int32(p.PdgCode),
			mother_id:    int32(p.MotherID),
			vertex_x:     p.Vertex.X,
			vertex_y:     p.Vertex.Y,
			vertex_z:     p.Vertex.Z,
			px:           p.Momentum.X,
			py:           p.Momentum.Y,
			pz:           p.Momentum.Z,
		}
	}
	return writeRowsToTable(w.ProjPointTable, rows)
}

func (w *Writer) Close() error {
	var errs []error

	datasets := []struct {
		name string
		dset *hdf5.Dataset
	}{
		{"event table", w.EventTable},
		{"caldata table", w.CalDataTable},
		{"adc array", w.ADCArray},
		{"projpoint table", w.ProjPointTable},
	}
	for _, d := range datasets {
		if d.dset == nil {
			continue
		}
		if err := d.dset.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing %s: %w", d.name, err))
		}
	}
	if w.GTPCGroup != nil {
		if err := w.GTPCGroup.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing GTPC group: %w", err))
		}
	}
	if w.File != nil {
		if err := w.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing file: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
