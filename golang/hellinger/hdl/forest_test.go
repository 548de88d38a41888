package hdl

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// emptyColumns is a matrix with rows but no columns, which mat.Dense cannot represent.
type emptyColumns struct{ rows int }

func (m emptyColumns) Dims() (int, int)    { return m.rows, 0 }
func (m emptyColumns) At(i, j int) float64 { panic("no columns") }
func (m emptyColumns) T() mat.Matrix       { return mat.Transpose{Matrix: m} }

func TestValidateTrainingInput(t *testing.T) {
	tests := []struct {
		name     string
		features mat.Matrix
		labels   []float64
	}{
		{"nil matrix", nil, nil},
		{"single instance", mat.NewDense(1, 2, nil), []float64{1}},
		{"no columns", emptyColumns{rows: 3}, []float64{0, 1, 0}},
		{"length mismatch", mat.NewDense(3, 2, nil), []float64{0, 1}},
		{"label out of range", mat.NewDense(3, 2, nil), []float64{0, 1, 2}},
		{"only negatives", mat.NewDense(3, 2, nil), []float64{0, 0, 0}},
		{"only positives", mat.NewDense(3, 2, nil), []float64{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateTrainingInput(tt.features, tt.labels), ErrInvalidInput)
		})
	}
	assert.NoError(t, ValidateTrainingInput(mat.NewDense(2, 1, nil), []float64{1, 0}))
}

func TestTrainForestRejectsBadParameters(t *testing.T) {
	features, labels := imbalancedData(10, 40, 4)
	ctx := context.Background()

	tests := []struct {
		name   string
		params ForestParams
	}{
		{"no trees", ForestParams{}},
		{"negative trees", ForestParams{NumTrees: -2}},
		{"negative bins", ForestParams{NumTrees: 1, TreeOptions: TreeOptions{NumBins: -1}}},
		{"negative cutoff", ForestParams{NumTrees: 1, TreeOptions: TreeOptions{Cutoff: -1}}},
		{"negative memory split", ForestParams{NumTrees: 1, TreeOptions: TreeOptions{MemSplit: -1}}},
		{"negative threads", ForestParams{NumTrees: 1, TreeOptions: TreeOptions{ThreadsNum: -3}}},
		{"ratio above one", ForestParams{NumTrees: 1, MinFeatureRatio: 1.5}},
		{"negative ratio", ForestParams{NumTrees: 1, MinFeatureRatio: -0.2}},
		{"negative workers", ForestParams{NumTrees: 1, Workers: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			tt.params.Progress = func(int) { calls++ }
			forest, err := TrainForest(ctx, features, labels, tt.params)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, forest)
			assert.Zero(t, calls, "no tree is grown for rejected parameters")
		})
	}

	_, err := TrainForest(ctx, features, labels[:10], ForestParams{NumTrees: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFitTreeDefaults(t *testing.T) {
	features := mat.NewDense(8, 1, []float64{0, 1, 2, 3, 9, 10, 11, 12})
	labels := []float64{0, 0, 0, 0, 1, 1, 1, 1}

	tree, err := FitTree(context.Background(), features, labels, TreeOptions{})
	require.NoError(t, err)
	require.False(t, tree.IsLeaf())
	assert.InDelta(t, 2.0, tree.Distance, 1e-12)
	assert.Equal(t, 0.0, tree.Left.Score)
	assert.Equal(t, 1.0, tree.Right.Score)

	_, err = FitTree(context.Background(), features, labels, TreeOptions{NumBins: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = FitTree(context.Background(), features, []float64{0, 0, 0, 0, 0, 0, 0, 0}, TreeOptions{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSetDefaultValues(t *testing.T) {
	var params ForestParams
	params.SetDefaultValues(500)
	assert.Equal(t, 100, params.NumBins)
	assert.Equal(t, 10, params.Cutoff)
	assert.Equal(t, 1, params.MemSplit)
	assert.Equal(t, 1, params.MemThresh)
	assert.Equal(t, 1, params.ThreadsNum)
	assert.Equal(t, 0.8, params.MinFeatureRatio)
	assert.Equal(t, 1, params.Workers)

	small := TreeOptions{NumBins: 7}
	small.SetDefaultValues(10)
	assert.Equal(t, 7, small.NumBins)
	assert.Equal(t, 1, small.Cutoff)
}

func TestFitTreeMemThreshZeroIsTheDefault(t *testing.T) {
	features, labels := imbalancedData(17, 120, 6)
	ctx := context.Background()

	options := TreeOptions{MemSplit: 3}
	options.SetDefaultValues(120)
	assert.Equal(t, 1, options.MemThresh)

	unset, err := FitTree(ctx, features, labels, TreeOptions{NumBins: 16, MemSplit: 3, MemThresh: 0})
	require.NoError(t, err)
	one, err := FitTree(ctx, features, labels, TreeOptions{NumBins: 16, MemSplit: 3, MemThresh: 1})
	require.NoError(t, err)
	assert.Equal(t, one, unset)
}

func TestSampleFeatureSubset(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	sizes := map[int]bool{}
	for i := 0; i < 200; i++ {
		subset := SampleFeatureSubset(rng, 10, 0.75)
		sizes[len(subset)] = true

		assert.GreaterOrEqual(t, len(subset), 8)
		assert.LessOrEqual(t, len(subset), 10)
		assert.True(t, sort.IntsAreSorted(subset))
		for j, column := range subset {
			assert.GreaterOrEqual(t, column, 0)
			assert.Less(t, column, 10)
			if j > 0 {
				assert.NotEqual(t, subset[j-1], column)
			}
		}
	}
	assert.Len(t, sizes, 3, "every size from 8 to 10 shows up")

	assert.Equal(t, []int{0, 1, 2, 3}, SampleFeatureSubset(rng, 4, 1))
	assert.NotEmpty(t, SampleFeatureSubset(rng, 3, 0.01))
}

func TestTrainForestIsReproducible(t *testing.T) {
	features, labels := imbalancedData(11, 200, 6)
	ctx := context.Background()
	base := ForestParams{NumTrees: 6, Seed: 42, TreeOptions: TreeOptions{NumBins: 20}}

	first, err := TrainForest(ctx, features, labels, base)
	require.NoError(t, err)
	require.Len(t, first.Members, 6)

	second, err := TrainForest(ctx, features, labels, base)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	parallel := base
	parallel.Workers = 4
	parallel.ThreadsNum = 2
	parallel.MemSplit = 3
	third, err := TrainForest(ctx, features, labels, parallel)
	require.NoError(t, err)
	assert.Equal(t, first, third)

	explicit := base
	explicit.Seed = 0
	explicit.Rand = rand.New(rand.NewSource(42))
	fourth, err := TrainForest(ctx, features, labels, explicit)
	require.NoError(t, err)
	assert.Equal(t, first, fourth)

	for _, member := range first.Members {
		assert.GreaterOrEqual(t, len(member.FeatureIndices), 5)
		assert.True(t, sort.IntsAreSorted(member.FeatureIndices))
		assert.Less(t, member.Tree.maxFeature(), len(member.FeatureIndices))
	}
}

func TestTrainForestProgress(t *testing.T) {
	features, labels := imbalancedData(12, 60, 3)
	var seen []int
	params := ForestParams{NumTrees: 4, TreeOptions: TreeOptions{NumBins: 10}}
	params.Progress = func(treeIndex int) { seen = append(seen, treeIndex) }

	forest, err := TrainForest(context.Background(), features, labels, params)
	require.NoError(t, err)
	assert.Len(t, forest.Members, 4)
	assert.Equal(t, []int{0, 1, 2, 3}, seen)
}

func TestTrainForestProgressIsOrderedWithWorkers(t *testing.T) {
	features, labels := imbalancedData(15, 80, 4)
	var seen []int
	params := ForestParams{NumTrees: 16, Workers: 4, TreeOptions: TreeOptions{NumBins: 10}}
	params.Progress = func(treeIndex int) { seen = append(seen, treeIndex) }

	forest, err := TrainForest(context.Background(), features, labels, params)
	require.NoError(t, err)
	assert.Len(t, forest.Members, 16)

	want := make([]int, 16)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, seen)
}

func TestTrainForestCancelledWithWorkers(t *testing.T) {
	features, labels := imbalancedData(16, 60, 3)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen []int
	params := ForestParams{NumTrees: 12, Workers: 3, TreeOptions: TreeOptions{NumBins: 10}}
	params.Progress = func(treeIndex int) {
		seen = append(seen, treeIndex)
		if treeIndex == 5 {
			cancel()
		}
	}

	forest, err := TrainForest(ctx, features, labels, params)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, forest)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, seen, "no tree is announced after the cancellation")
	assert.LessOrEqual(t, len(forest.Members), 5)
	for _, member := range forest.Members {
		assert.NotNil(t, member.Tree)
	}
}

func TestTrainForestCancelled(t *testing.T) {
	features, labels := imbalancedData(13, 60, 3)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	params := ForestParams{NumTrees: 5, TreeOptions: TreeOptions{NumBins: 10}}
	params.Progress = func(treeIndex int) {
		if treeIndex == 2 {
			cancel()
		}
	}

	forest, err := TrainForest(ctx, features, labels, params)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, forest)
	assert.Len(t, forest.Members, 2, "trees completed before the cancellation are kept")
}

func TestForestPredictVotes(t *testing.T) {
	features := denseOf([][]float64{
		{0, 5},
		{1, 6},
	})

	forest := &Forest{Members: []ForestMember{
		{Tree: leafOf(1, 0.9, 3), FeatureIndices: []int{0}},
		{Tree: leafOf(1, 0.6, 3), FeatureIndices: []int{1}},
		{Tree: leafOf(0, 0.4, 3), FeatureIndices: []int{0, 1}},
	}}
	labels, scores, err := forest.Predict(features)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, labels)
	assert.InDelta(t, 1.9/3, scores[0], 1e-12)
	assert.InDelta(t, 1.9/3, scores[1], 1e-12)

	tie := &Forest{Members: forest.Members[1:]}
	labels, scores, err = tie.Predict(features)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, labels)
	assert.InDelta(t, 0.5, scores[0], 1e-12)
}

func TestForestPredictProjectsColumns(t *testing.T) {
	// the tree splits on its own column 0, which is column 2 of the data
	tree := NewSplitNode(BestSplit{FeatureIndex: 0, Threshold: 0.5, Valid: true}, 2, leafOf(0, 0, 1), leafOf(1, 1, 1))
	forest := &Forest{Members: []ForestMember{{Tree: tree, FeatureIndices: []int{2}}}}

	labels, scores, err := forest.Predict(denseOf([][]float64{
		{9, 9, 0},
		{-9, -9, 1},
	}))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, labels)
	assert.Equal(t, []float64{0, 1}, scores)

	_, _, err = forest.Predict(denseOf([][]float64{{1, 2}}))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = (&Forest{}).Predict(denseOf([][]float64{{1, 2}}))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTrainForestThenPredict(t *testing.T) {
	features, labels := imbalancedData(14, 300, 4)
	forest, err := TrainForest(context.Background(), features, labels, ForestParams{NumTrees: 5, Seed: 1, TreeOptions: TreeOptions{NumBins: 20}})
	require.NoError(t, err)

	predicted, scores, err := forest.Predict(features)
	require.NoError(t, err)
	require.Len(t, predicted, 300)
	for p := range scores {
		assert.GreaterOrEqual(t, scores[p], 0.0)
		assert.LessOrEqual(t, scores[p], 1.0)
		assert.Contains(t, []int{0, 1}, predicted[p])
	}
}
