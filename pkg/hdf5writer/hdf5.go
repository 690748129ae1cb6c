package hdf5writer

import (
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

type EventHDF5 struct {
	evt_number     int32
	n_records      int32
	electrons      int32
	clamped        int32
	out_of_bounds  int32
	invalid_pad    int32
	non_terminated int32
}

type CalDataHDF5 struct {
	evt_number int32
	pad_id     int32
	charge     int32
}

type ProjPointHDF5 struct {
	evt_number   int32
	pad_id       int32
	charge       int32
	time_entries int32
	time_sum     float64
	time_sum_sq  float64
	time_min     float64
	time_max     float64
	pdg_code     int32
	mother_id    int32
	vertex_x     float64
	vertex_y     float64
	vertex_z     float64
	px           float64
	py           float64
	pz           float64
}

// H5S_UNLIMITED is -1L
const unlimited = ^uint(0)

func openFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, fmt.Errorf("error creating file %q: %w", fname, err)
	}
	return f, nil
}

func create2dArray(group *hdf5.Group, name string, nColumns int, compression int) (*hdf5.Dataset, error) {
	dims := []uint{0, uint(nColumns)}
	maxDims := []uint{unlimited, uint(nColumns)}
	chunks := []uint{64, uint(nColumns)}

	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, fmt.Errorf("error creating dataspace for %s: %w", name, err)
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, fmt.Errorf("error creating property list for %s: %w", name, err)
	}
	defer plist.Close()
	plist.SetChunk(chunks)
	plist.SetDeflate(compression)

	dset, err := group.CreateDatasetWith(name, hdf5.T_NATIVE_UINT16, fileSpace, plist)
	if err != nil {
		return nil, fmt.Errorf("error creating dataset %s: %w", name, err)
	}
	return dset, nil
}

func createTable(group *hdf5.Group, name string, datatype interface{}, compression int) (*hdf5.Dataset, error) {
	dims := []uint{0}
	maxDims := []uint{unlimited}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, fmt.Errorf("error creating dataspace for %s: %w", name, err)
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, fmt.Errorf("error creating property list for %s: %w", name, err)
	}
	defer plist.Close()
	plist.SetChunk([]uint{32768})
	plist.SetDeflate(compression)

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, fmt.Errorf("error creating datatype for %s: %w", name, err)
	}

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, fmt.Errorf("error creating dataset %s: %w", name, err)
	}
	return dset, nil
}

// appendRows extends the first dimension of the dataset by the rows in data.
// rowSize is the number of elements of data per row.
func appendRows[T any](dataset *hdf5.Dataset, data []T, nRows uint, rowSize uint) error {
	if nRows == 0 {
		return nil
	}
	filespace := dataset.Space()
	dims, _, err := filespace.SimpleExtentDims()
	filespace.Close()
	if err != nil {
		return fmt.Errorf("error reading dataset size: %w", err)
	}
	rowsInFile := dims[0]

	newsize := append([]uint{rowsInFile + nRows}, dims[1:]...)
	if err := dataset.Resize(newsize); err != nil {
		return fmt.Errorf("error extending dataset: %w", err)
	}
	filespace = dataset.Space()
	defer filespace.Close()

	start := make([]uint, len(dims))
	start[0] = rowsInFile
	count := append([]uint{nRows}, dims[1:]...)
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return fmt.Errorf("error selecting rows: %w", err)
	}

	memspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		return fmt.Errorf("error creating memory dataspace: %w", err)
	}
	defer memspace.Close()

	if uint(len(data)) != nRows*rowSize {
		return fmt.Errorf("wrong buffer size %d for %d rows of %d", len(data), nRows, rowSize)
	}
	return dataset.WriteSubset(&data, memspace, filespace)
}

func writeRowsToTable[T any](dataset *hdf5.Dataset, rows []T) error {
	return appendRows(dataset, rows, uint(len(rows)), 1)
}
