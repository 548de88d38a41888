// SPDX-License-Identifier: Apache-2.0

package main

/*
#cgo CFLAGS: -I.
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"io"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/tarstars/hellinger_forest/golang/hellinger/hdl"
)

// A single tree is kept as a forest of one member over all the columns, which
// predicts exactly like the tree.
var (
	handleMu   sync.Mutex
	nextHandle uint64 = 1
	forests           = make(map[uint64]*hdl.Forest)

	lastErrorMu sync.Mutex
	lastError   string

	logSilenceOnce sync.Once
)

func setLastError(err error) {
	lastErrorMu.Lock()
	defer lastErrorMu.Unlock()
	if err != nil {
		lastError = err.Error()
	} else {
		lastError = ""
	}
}

func getLastError() string {
	lastErrorMu.Lock()
	defer lastErrorMu.Unlock()
	return lastError
}

func silenceLogs() {
	logSilenceOnce.Do(func() {
		logrus.SetOutput(io.Discard)
	})
}

func storeForest(f *hdl.Forest) uint64 {
	handleMu.Lock()
	defer handleMu.Unlock()
	handle := nextHandle
	forests[handle] = f
	nextHandle++
	return handle
}

func fetchForest(handle uint64) (*hdl.Forest, error) {
	handleMu.Lock()
	defer handleMu.Unlock()
	forest, ok := forests[handle]
	if !ok {
		return nil, errors.New("invalid model handle")
	}
	return forest, nil
}

//export FreeModel
func FreeModel(handle C.ulonglong) {
	handleMu.Lock()
	defer handleMu.Unlock()
	delete(forests, uint64(handle))
}

func copyFloatSlice(ptr *C.double, length int) ([]float64, error) {
	if length < 0 {
		return nil, errors.New("negative length")
	}
	if length == 0 {
		return nil, nil
	}
	if ptr == nil {
		return nil, errors.New("null pointer for non-empty slice")
	}
	src := unsafe.Slice((*float64)(unsafe.Pointer(ptr)), length)
	dst := make([]float64, length)
	copy(dst, src)
	return dst, nil
}

func floatsFromPtr(ptr *C.double, length int) ([]float64, error) {
	if length <= 0 {
		return nil, errors.New("length must be positive")
	}
	if ptr == nil {
		return nil, errors.New("null output pointer")
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(ptr)), length), nil
}

func intsFromPtr(ptr *C.int, length int) ([]C.int, error) {
	if length <= 0 {
		return nil, errors.New("length must be positive")
	}
	if ptr == nil {
		return nil, errors.New("null output pointer")
	}
	return unsafe.Slice(ptr, length), nil
}

// buildDense copies a row major rows x cols array; gonum has no empty matrices.
func buildDense(ptr *C.double, rows, cols C.int) (*mat.Dense, error) {
	r, c := int(rows), int(cols)
	if r <= 0 || c <= 0 {
		return nil, errors.Wrapf(hdl.ErrInvalidInput, "matrix dimensions %dx%d", r, c)
	}
	data, err := copyFloatSlice(ptr, r*c)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(r, c, data), nil
}

func allColumns(width int) []int {
	columns := make([]int, width)
	for i := range columns {
		columns[i] = i
	}
	return columns
}

//export FitTree
func FitTree(
	featuresPtr *C.double,
	rows C.int,
	cols C.int,
	labelsPtr *C.double,
	numBins C.int,
	cutoff C.int,
	memSplit C.int,
	memThresh C.int,
	threadsNum C.int,
) C.ulonglong {
	setLastError(nil)
	silenceLogs()

	features, err := buildDense(featuresPtr, rows, cols)
	if err != nil {
		setLastError(err)
		return 0
	}
	labels, err := copyFloatSlice(labelsPtr, int(rows))
	if err != nil {
		setLastError(err)
		return 0
	}

	options := treeOptions(int(numBins), int(cutoff), int(memSplit), int(memThresh), int(threadsNum))
	tree, err := hdl.FitTree(context.Background(), features, labels, options)
	if err != nil {
		setLastError(err)
		return 0
	}
	forest := &hdl.Forest{Members: []hdl.ForestMember{{Tree: tree, FeatureIndices: allColumns(int(cols))}}}
	return C.ulonglong(storeForest(forest))
}

//export TrainForest
func TrainForest(
	featuresPtr *C.double,
	rows C.int,
	cols C.int,
	labelsPtr *C.double,
	numTrees C.int,
	numBins C.int,
	minFeatureRatio C.double,
	cutoff C.int,
	memSplit C.int,
	memThresh C.int,
	threadsNum C.int,
	seed C.longlong,
	workers C.int,
) C.ulonglong {
	setLastError(nil)
	silenceLogs()

	features, err := buildDense(featuresPtr, rows, cols)
	if err != nil {
		setLastError(err)
		return 0
	}
	labels, err := copyFloatSlice(labelsPtr, int(rows))
	if err != nil {
		setLastError(err)
		return 0
	}

	options := treeOptions(int(numBins), int(cutoff), int(memSplit), int(memThresh), int(threadsNum))
	params := forestParams(options, int(numTrees), float64(minFeatureRatio), int64(seed), int(workers))
	forest, err := hdl.TrainForest(context.Background(), features, labels, params)
	if err != nil {
		setLastError(err)
		return 0
	}
	return C.ulonglong(storeForest(forest))
}

//export NumTrees
func NumTrees(handle C.ulonglong) C.int {
	setLastError(nil)
	forest, err := fetchForest(uint64(handle))
	if err != nil {
		setLastError(err)
		return -1
	}
	return C.int(len(forest.Members))
}

//export Predict
func Predict(
	handle C.ulonglong,
	featuresPtr *C.double,
	rows C.int,
	cols C.int,
	labelsOutPtr *C.int,
	scoresOutPtr *C.double,
) C.int {
	setLastError(nil)
	forest, err := fetchForest(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}

	features, err := buildDense(featuresPtr, rows, cols)
	if err != nil {
		setLastError(err)
		return 2
	}

	labels, scores, err := forest.Predict(features)
	if err != nil {
		setLastError(err)
		return 3
	}

	labelsOut, err := intsFromPtr(labelsOutPtr, int(rows))
	if err != nil {
		setLastError(err)
		return 4
	}
	scoresOut, err := floatsFromPtr(scoresOutPtr, int(rows))
	if err != nil {
		setLastError(err)
		return 5
	}
	for i, label := range labels {
		labelsOut[i] = C.int(label)
	}
	copy(scoresOut, scores)
	return 0
}

//export GetStatistics
func GetStatistics(
	trueLabelsPtr *C.double,
	predictionsPtr *C.int,
	length C.int,
	statisticsOutPtr *C.double,
) C.int {
	setLastError(nil)
	trueLabels, err := copyFloatSlice(trueLabelsPtr, int(length))
	if err != nil {
		setLastError(err)
		return 1
	}
	predicted, err := intsFromPtr(predictionsPtr, int(length))
	if err != nil {
		setLastError(err)
		return 2
	}
	predictions := make([]int, len(predicted))
	for i, p := range predicted {
		predictions[i] = int(p)
	}

	stats, err := hdl.GetStatistics(trueLabels, predictions)
	if err != nil {
		setLastError(err)
		return 3
	}
	out, err := floatsFromPtr(statisticsOutPtr, 3)
	if err != nil {
		setLastError(err)
		return 4
	}
	out[0], out[1], out[2] = stats.Precision, stats.Recall, stats.F1
	return 0
}

//export RenderTrees
func RenderTrees(handle C.ulonglong, prefix, figureType, directory *C.char) C.int {
	setLastError(nil)
	forest, err := fetchForest(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}
	goPrefix := C.GoString(prefix)
	goFigureType := C.GoString(figureType)
	goDir := C.GoString(directory)
	if goPrefix == "" {
		goPrefix = "tree"
	}
	if goFigureType == "" {
		goFigureType = "svg"
	}
	if goDir == "" {
		goDir = "."
	}
	if err := forest.RenderTrees(goPrefix, goFigureType, goDir); err != nil {
		setLastError(err)
		return 2
	}
	return 0
}

//export GetLastError
func GetLastError() *C.char {
	errStr := getLastError()
	if errStr == "" {
		return nil
	}
	return C.CString(errStr)
}

//export FreeCString
func FreeCString(str *C.char) {
	if str != nil {
		C.free(unsafe.Pointer(str))
	}
}

func main() {}
