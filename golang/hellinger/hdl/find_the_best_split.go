package hdl

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

//BestSplit contains results of the split selection algorithm.
//FeatureIndex is relative to the matrix the search ran on. Valid is false when
//no column offered a candidate threshold.
type BestSplit struct {
	FeatureIndex int
	Distance     float64
	Threshold    float64
	Valid        bool
}

func noSplit() BestSplit {
	return BestSplit{FeatureIndex: -1}
}

// better reports whether other beats split. Equal distances keep split, so the
// first candidate in scan order wins.
func (split BestSplit) better(other BestSplit) bool {
	return other.Valid && (!split.Valid || other.Distance > split.Distance)
}

// offset moves a block-local feature index into the coordinates of the whole matrix.
func (split BestSplit) offset(firstColumn int) BestSplit {
	if split.Valid {
		split.FeatureIndex += firstColumn
	}
	return split
}

const (
	countLeftPositive = iota
	countLeftNegative
	countRightPositive
	countRightNegative
	countKinds
)

//ContingencyCounts holds TL+, TL-, TR+ and TR- for every column of a feature block
//and every candidate threshold of that column in a (columns, numBins-1, 4) tensor.
//Constant columns have no thresholds and their counts stay zero.
type ContingencyCounts struct {
	counts     *tensor.Dense
	thresholds [][]float64

	Positives, Negatives float64
}

//NewContingencyCounts bins every column of block into numBins-1 interior thresholds
//and counts the labels on each side of each threshold. numBins must be at least 2.
func NewContingencyCounts(block mat.Matrix, labels []float64, numBins int) *ContingencyCounts {
	h, k := block.Dims()
	nt := numBins - 1

	cc := &ContingencyCounts{
		counts:     tensor.New(tensor.WithShape(k, nt, countKinds), tensor.Of(tensor.Float64)),
		thresholds: make([][]float64, k),
	}
	for _, label := range labels {
		switch label {
		case 1:
			cc.Positives++
		case 0:
			cc.Negatives++
		}
	}

	data := cc.counts.Data().([]float64)
	column := make([]float64, h)
	positivesAt := make([]float64, nt+1)
	negativesAt := make([]float64, nt+1)

	for q := 0; q < k; q++ {
		mat.Col(column, q, block)
		lo, hi := floats.Min(column), floats.Max(column)
		if lo == hi {
			continue
		}
		thresholds := CandidateThresholds(lo, hi, numBins)
		cc.thresholds[q] = thresholds

		for i := range positivesAt {
			positivesAt[i], negativesAt[i] = 0, 0
		}
		// a value goes left of every threshold from the first one >= value on
		for p, value := range column {
			first := sort.SearchFloat64s(thresholds, value)
			switch labels[p] {
			case 1:
				positivesAt[first]++
			case 0:
				negativesAt[first]++
			}
		}

		var leftPositives, leftNegatives float64
		for b := 0; b < nt; b++ {
			leftPositives += positivesAt[b]
			leftNegatives += negativesAt[b]
			offset := (q*nt + b) * countKinds
			data[offset+countLeftPositive] = leftPositives
			data[offset+countLeftNegative] = leftNegatives
			data[offset+countRightPositive] = cc.Positives - leftPositives
			data[offset+countRightNegative] = cc.Negatives - leftNegatives
		}
	}
	return cc
}

//Thresholds returns the candidate thresholds of column q, nil for a constant column.
func (cc *ContingencyCounts) Thresholds(q int) []float64 {
	return cc.thresholds[q]
}

//At returns TL+, TL-, TR+ and TR- of column q at its b-th threshold.
func (cc *ContingencyCounts) At(q, b int) (leftPositives, leftNegatives, rightPositives, rightNegatives float64) {
	get := func(kind int) float64 {
		v, err := cc.counts.At(q, b, kind)
		if err != nil {
			panic(err)
		}
		return v.(float64)
	}
	return get(countLeftPositive), get(countLeftNegative), get(countRightPositive), get(countRightNegative)
}

//CandidateThresholds returns the numBins-1 points that cut [lo, hi] into numBins
//equal bins, endpoints excluded.
func CandidateThresholds(lo, hi float64, numBins int) []float64 {
	if numBins < 2 {
		return nil
	}
	points := floats.Span(make([]float64, numBins+1), lo, hi)
	return points[1:numBins]
}

//HellingerDistance is the squared Hellinger distance between the positive and the
//negative class distributions over the two sides of a split. It lies in [0, 2].
//A class with no samples has no distribution, the distance is then 0.
func HellingerDistance(leftPositives, leftNegatives, rightPositives, rightNegatives, positives, negatives float64) float64 {
	if positives == 0 || negatives == 0 {
		return 0
	}
	left := math.Sqrt(leftPositives/positives) - math.Sqrt(leftNegatives/negatives)
	right := math.Sqrt(rightPositives/positives) - math.Sqrt(rightNegatives/negatives)
	return left*left + right*right
}

//HellingerSplit finds the column of block and the candidate threshold of that column
//with the largest Hellinger distance. Ties go to the first column, then the first
//threshold, in scan order. The search is invalid when the block has no rows or
//columns, numBins < 2, every column is constant or one of the classes is absent.
func HellingerSplit(block mat.Matrix, labels []float64, numBins int) BestSplit {
	h, k := block.Dims()
	if h == 0 || k == 0 || numBins < 2 {
		return noSplit()
	}

	cc := NewContingencyCounts(block, labels, numBins)
	if cc.Positives == 0 || cc.Negatives == 0 {
		return noSplit()
	}

	best := noSplit()
	for q := 0; q < k; q++ {
		for b, threshold := range cc.Thresholds(q) {
			lp, ln, rp, rn := cc.At(q, b)
			candidate := BestSplit{
				FeatureIndex: q,
				Distance:     HellingerDistance(lp, ln, rp, rn, cc.Positives, cc.Negatives),
				Threshold:    threshold,
				Valid:        true,
			}
			if best.better(candidate) {
				best = candidate
			}
		}
	}
	return best
}
