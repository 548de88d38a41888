package hdl

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

//TreeParams collect the arguments of the tree induction. InduceTree uses them as
//they are; defaults and validation belong to FitTree and TrainForest.
type TreeParams struct {
	// NumBins is the number of equal-width bins per column; a column offers NumBins-1 thresholds.
	NumBins int
	// Cutoff is the sample count at or below which a node becomes a leaf.
	Cutoff int
	// MemThresh is the sample count at or below which all columns are searched in one block.
	MemThresh int
	// MemSplit is the number of column blocks searched one after another above MemThresh.
	MemSplit int
	// ThreadsNum > 1 searches the column blocks of a node concurrently.
	ThreadsNum int
}

//FeatureBlock is a half interval [From, To) of column indices.
type FeatureBlock struct {
	From, To int
}

//FeatureBlocks cuts numFeatures columns into contiguous blocks of numFeatures/memSplit
//columns (at least one). The last block may be narrower, and when memSplit does not
//divide numFeatures there are more than memSplit blocks.
func FeatureBlocks(numFeatures, memSplit int) []FeatureBlock {
	if memSplit < 1 {
		memSplit = 1
	}
	width := numFeatures / memSplit
	if width < 1 {
		width = 1
	}
	blocks := make([]FeatureBlock, 0, (numFeatures+width-1)/width)
	for from := 0; from < numFeatures; from += width {
		to := from + width
		if to > numFeatures {
			to = numFeatures
		}
		blocks = append(blocks, FeatureBlock{from, to})
	}
	return blocks
}

//InduceTree recursively grows a Hellinger tree on features and labels.
//The only error it returns is the context error when ctx is done before the tree is complete.
func InduceTree(ctx context.Context, features *mat.Dense, labels []float64, params TreeParams) (*TreeNode, error) {
	start := time.Now()
	tree, err := induce(ctx, features, labels, params, params.MemSplit)
	if err != nil {
		return nil, err
	}
	treeInductionSecondsMetrics.Observe(time.Since(start).Seconds())
	treesGrownMetrics.Inc()
	return tree, nil
}

func induce(ctx context.Context, features *mat.Dense, labels []float64, params TreeParams, memSplit int) (*TreeNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := len(labels)
	if sameLabels(labels) {
		return newLeaf(labels, leafReasonPure), nil
	}
	if n <= params.Cutoff {
		return newLeaf(labels, leafReasonCutoff), nil
	}

	if n <= params.MemThresh {
		memSplit = 1
	}

	split, err := searchBlocks(ctx, features, labels, params.NumBins, memSplit, params.ThreadsNum)
	if err != nil {
		return nil, err
	}
	if !split.Valid {
		return newLeaf(labels, leafReasonNoSplit), nil
	}

	leftFeatures, leftLabels, rightFeatures, rightLabels := Partition(features, labels, split.FeatureIndex, split.Threshold)
	if len(leftLabels) == n || len(rightLabels) == n {
		return newLeaf(labels, leafReasonDegenerate), nil
	}

	log.Debugf("split %d samples on f_%d <= %g (hellinger %.5f): %d left, %d right",
		n, split.FeatureIndex, split.Threshold, split.Distance, len(leftLabels), len(rightLabels))

	left, err := induce(ctx, leftFeatures, leftLabels, params, memSplit)
	if err != nil {
		return nil, err
	}
	right, err := induce(ctx, rightFeatures, rightLabels, params, memSplit)
	if err != nil {
		return nil, err
	}

	splitDistanceMetrics.Observe(split.Distance)
	treeNodesMetrics.WithLabelValues("split").Inc()
	return NewSplitNode(split, n, left, right), nil
}

// searchBlocks runs HellingerSplit on every column block and keeps the best split
// in block order, whether or not the blocks were searched concurrently.
func searchBlocks(ctx context.Context, features *mat.Dense, labels []float64, numBins, memSplit, threadsNum int) (BestSplit, error) {
	h, w := features.Dims()
	blocks := FeatureBlocks(w, memSplit)
	result := make([]BestSplit, len(blocks))

	search := func(i int) {
		block := blocks[i]
		result[i] = HellingerSplit(features.Slice(0, h, block.From, block.To), labels, numBins).offset(block.From)
	}

	if threadsNum <= 1 || len(blocks) == 1 {
		for i := range blocks {
			search(i)
		}
	} else {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(threadsNum)
		for i := range blocks {
			i := i
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				search(i)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return noSplit(), err
		}
	}

	best := noSplit()
	for _, split := range result {
		if best.better(split) {
			best = split
		}
	}
	return best, nil
}

func newLeaf(labels []float64, reason string) *TreeNode {
	leafTerminationsMetrics.WithLabelValues(reason).Inc()
	treeNodesMetrics.WithLabelValues("leaf").Inc()
	return NewLeafNode(labels)
}

func sameLabels(labels []float64) bool {
	for i := 1; i < len(labels); i++ {
		if labels[i] != labels[0] {
			return false
		}
	}
	return true
}
