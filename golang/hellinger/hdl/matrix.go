package hdl

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

//Dataset contains a feature matrix and the binary labels of its rows.
type Dataset struct {
	Features    *mat.Dense
	Labels      []float64
	Description *string
}

//SetDescription sets a description for a Dataset object
func (ds *Dataset) SetDescription(description string) {
	ds.Description = &description
}

//Name returns the description or a placeholder.
func (ds Dataset) Name() string {
	if ds.Description == nil {
		return "<unnamed>"
	}
	return *ds.Description
}

//ReadDataset reads features and labels from two npy files. The labels file may be
//omitted (empty name) for data that is only going to be predicted.
func ReadDataset(fileNameFeatures, fileNameLabels string) (ds Dataset, err error) {
	log.Debugf("try to load features <%s>", fileNameFeatures)
	ds.Features, err = ReadNpy(fileNameFeatures)
	if err != nil {
		return ds, err
	}
	if fileNameLabels == "" {
		return ds, nil
	}
	log.Debugf("try to load labels <%s>", fileNameLabels)
	labels, err := ReadNpy(fileNameLabels)
	if err != nil {
		return ds, err
	}
	ds.Labels, err = vectorOf(labels)
	if err != nil {
		return ds, errors.Wrapf(err, "labels in %s", fileNameLabels)
	}
	return ds, nil
}

//ReadNpy reads the content of npy file
func ReadNpy(fileName string) (*mat.Dense, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", fileName)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read npy header of %s", fileName)
	}

	denseMat := &mat.Dense{}
	if err := r.Read(denseMat); err != nil {
		return nil, errors.Wrapf(err, "read npy data of %s", fileName)
	}
	return denseMat, nil
}

//WriteNpy stores m into fileName in npy format.
func WriteNpy(fileName string, m *mat.Dense) error {
	dst, err := os.Create(fileName)
	if err != nil {
		return errors.Wrapf(err, "create %s", fileName)
	}
	if err := npyio.Write(dst, m); err != nil {
		dst.Close()
		return errors.Wrapf(err, "write %s", fileName)
	}
	return dst.Close()
}

// vectorOf flattens a single row or a single column matrix.
func vectorOf(m *mat.Dense) ([]float64, error) {
	h, w := m.Dims()
	switch {
	case w == 1:
		return mat.Col(nil, 0, m), nil
	case h == 1:
		return mat.Row(nil, 0, m), nil
	default:
		return nil, invalidInput("expected a vector, got a %dx%d matrix", h, w)
	}
}

//Height returns the number of rows of m.
func Height(m mat.Matrix) int {
	h, _ := m.Dims()
	return h
}

//Width returns the number of columns of m.
func Width(m mat.Matrix) int {
	_, w := m.Dims()
	return w
}

//Partition splits rows of features and labels by feature <= threshold (left) and
//feature > threshold (right). Row order is kept on both sides.
func Partition(features *mat.Dense, labels []float64, feature int, threshold float64) (leftFeatures *mat.Dense, leftLabels []float64, rightFeatures *mat.Dense, rightLabels []float64) {
	h, w := features.Dims()
	var leftRows, rightRows []int
	for p := 0; p < h; p++ {
		if features.At(p, feature) <= threshold {
			leftRows = append(leftRows, p)
		} else {
			rightRows = append(rightRows, p)
		}
	}
	leftFeatures, leftLabels = selectRows(features, labels, leftRows, w)
	rightFeatures, rightLabels = selectRows(features, labels, rightRows, w)
	return
}

func selectRows(features *mat.Dense, labels []float64, rows []int, w int) (*mat.Dense, []float64) {
	selectedLabels := make([]float64, len(rows))
	if len(rows) == 0 {
		// gonum refuses zero sized matrices
		return nil, selectedLabels
	}
	selected := mat.NewDense(len(rows), w, nil)
	for i, p := range rows {
		selected.SetRow(i, features.RawRowView(p))
		selectedLabels[i] = labels[p]
	}
	return selected, selectedLabels
}

//SelectColumns copies the given columns of features, in the given order, into a new matrix.
func SelectColumns(features mat.Matrix, columns []int) (*mat.Dense, error) {
	h, w := features.Dims()
	if len(columns) == 0 {
		return nil, invalidInput("no columns selected")
	}
	for _, c := range columns {
		if c < 0 || c >= w {
			return nil, invalidInput("column %d is out of range for a matrix with %d columns", c, w)
		}
	}
	selected := mat.NewDense(h, len(columns), nil)
	for p := 0; p < h; p++ {
		for q, c := range columns {
			selected.Set(p, q, features.At(p, c))
		}
	}
	return selected, nil
}
