package hdl

import (
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

//Leaf returns the leaf that row reaches from node.
func (node *TreeNode) Leaf(row []float64) *TreeNode {
	return node.walk(row, nil)
}

//PredictTree returns, for every row of features, the label and the score of the leaf
//the row reaches in tree.
func PredictTree(tree *TreeNode, features mat.Matrix) (labels []int, scores []float64, err error) {
	if tree == nil {
		return nil, nil, invalidInput("nil tree")
	}
	h, w, err := validatePredictionInput(features)
	if err != nil {
		return nil, nil, err
	}
	if maxFeature := tree.maxFeature(); maxFeature >= w {
		return nil, nil, invalidInput("tree splits on feature %d but the matrix has %d columns", maxFeature, w)
	}

	labels = make([]int, h)
	scores = make([]float64, h)
	row := make([]float64, w)
	for p := 0; p < h; p++ {
		mat.Row(row, p, features)
		leaf := tree.Leaf(row)
		labels[p] = leaf.Label
		scores[p] = leaf.Score
	}
	return labels, scores, nil
}

//Predict runs every tree of the forest on its own columns of features and combines
//the results: the label is the majority vote (a tie gives 0) and the score is the
//mean of the tree scores.
func (f *Forest) Predict(features mat.Matrix) (labels []int, scores []float64, err error) {
	if f == nil || len(f.Members) == 0 {
		return nil, nil, invalidInput("empty forest")
	}
	h, _, err := validatePredictionInput(features)
	if err != nil {
		return nil, nil, err
	}

	n := len(f.Members)
	treeLabels := make([][]int, n)
	treeScores := make([][]float64, n)

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, member := range f.Members {
		i, member := i, member
		eg.Go(func() error {
			projected, err := SelectColumns(features, member.FeatureIndices)
			if err != nil {
				return err
			}
			treeLabels[i], treeScores[i], err = PredictTree(member.Tree, projected)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	labels = make([]int, h)
	scores = make([]float64, h)
	column := make([]float64, n)
	for p := 0; p < h; p++ {
		positives := 0
		for i := 0; i < n; i++ {
			positives += treeLabels[i][p]
			column[i] = treeScores[i][p]
		}
		if positives > n-positives {
			labels[p] = 1
		}
		scores[p] = stat.Mean(column, nil)
	}
	return labels, scores, nil
}
