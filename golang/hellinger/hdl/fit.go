package hdl

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

const (
	defaultNumBins   = 100
	defaultMemSplit  = 1
	defaultMemThresh = 1
)

//DefaultCutoff is the leaf cutoff used when none is given: 10 when there are more
//than ten instances, 1 otherwise.
func DefaultCutoff(numInstances int) int {
	if numInstances > 10 {
		return 10
	}
	return 1
}

//TreeOptions are the user facing tree hyperparameters. Zero values are replaced by
//defaults, see SetDefaultValues.
type TreeOptions struct {
	// NumBins is the number of bins used to discretize each feature, default 100.
	NumBins int `json:"numBins" mapstructure:"num_bins"`

	// Cutoff is the maximum number of instances in a leaf node, default DefaultCutoff.
	Cutoff int `json:"cutoff" mapstructure:"cutoff"`

	// MemSplit is the number of feature batches searched one after another, default 1.
	MemSplit int `json:"memSplit" mapstructure:"mem_split"`

	// MemThresh is the node size above which MemSplit applies, default 1.
	MemThresh int `json:"memThresh" mapstructure:"mem_thresh"`

	// ThreadsNum is the number of feature batches searched concurrently, default 1.
	ThreadsNum int `json:"threadsNum" mapstructure:"threads_num"`
}

//SetDefaultValues applies default settings to unspecified fields
func (o *TreeOptions) SetDefaultValues(numInstances int) {
	if o.NumBins == 0 {
		o.NumBins = defaultNumBins
	}
	if o.Cutoff == 0 {
		o.Cutoff = DefaultCutoff(numInstances)
	}
	if o.MemSplit == 0 {
		o.MemSplit = defaultMemSplit
	}
	if o.MemThresh == 0 {
		o.MemThresh = defaultMemThresh
	}
	if o.ThreadsNum == 0 {
		o.ThreadsNum = 1
	}
}

//Validate rejects options that SetDefaultValues cannot repair.
func (o TreeOptions) Validate() error {
	if o.NumBins < 1 {
		return invalidInput("number of bins must be at least 1, got %d", o.NumBins)
	}
	if o.Cutoff < 0 {
		return invalidInput("cutoff must not be negative, got %d", o.Cutoff)
	}
	if o.MemSplit < 1 {
		return invalidInput("memory split must be at least 1, got %d", o.MemSplit)
	}
	if o.MemThresh < 0 {
		return invalidInput("memory threshold must not be negative, got %d", o.MemThresh)
	}
	if o.ThreadsNum < 1 {
		return invalidInput("threads number must be at least 1, got %d", o.ThreadsNum)
	}
	return nil
}

//TreeParams converts resolved options into induction parameters.
func (o TreeOptions) TreeParams() TreeParams {
	return TreeParams{
		NumBins:    o.NumBins,
		Cutoff:     o.Cutoff,
		MemThresh:  o.MemThresh,
		MemSplit:   o.MemSplit,
		ThreadsNum: o.ThreadsNum,
	}
}

//FitTree trains a single Hellinger tree. The input is validated and the options are
//defaulted before the induction starts.
func FitTree(ctx context.Context, features *mat.Dense, labels []float64, options TreeOptions) (*TreeNode, error) {
	if err := ValidateTrainingInput(features, labels); err != nil {
		return nil, err
	}
	options.SetDefaultValues(Height(features))
	if err := options.Validate(); err != nil {
		return nil, err
	}
	return InduceTree(ctx, features, labels, options.TreeParams())
}
