package hdl

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

const defaultMinFeatureRatio = 0.8

//ForestMember is one tree of a forest together with the original column indices,
//in the order the tree was trained on them.
type ForestMember struct {
	Tree           *TreeNode
	FeatureIndices []int
}

//Forest is the model class of a Hellinger forest.
type Forest struct {
	Members []ForestMember
}

//ForestParams collect arguments required to grow a forest.
type ForestParams struct {
	TreeOptions `mapstructure:",squash"`

	// NumTrees is the number of trees to grow.
	NumTrees int `json:"numTrees" mapstructure:"num_trees"`

	// MinFeatureRatio bounds the smallest feature subset of a tree, default 0.8.
	MinFeatureRatio float64 `json:"minFeatureRatio" mapstructure:"min_feature_ratio"`

	// Seed seeds the feature sampling when Rand is nil.
	Seed int64 `json:"seed" mapstructure:"seed"`

	// Rand is the source of the feature sampling.
	Rand *rand.Rand `json:"-" mapstructure:"-"`

	// Workers is the number of trees grown at the same time, default 1.
	Workers int `json:"workers" mapstructure:"workers"`

	// Progress, if set, is called with the index of each tree before it is grown.
	// The calls come from the goroutine running TrainForest, in tree order, once a
	// worker is free for that tree.
	Progress func(treeIndex int) `json:"-" mapstructure:"-"`
}

//SetDefaultValues applies default settings to unspecified fields
func (p *ForestParams) SetDefaultValues(numInstances int) {
	p.TreeOptions.SetDefaultValues(numInstances)
	if p.MinFeatureRatio == 0 {
		p.MinFeatureRatio = defaultMinFeatureRatio
	}
	if p.Workers == 0 {
		p.Workers = 1
	}
}

//Validate rejects parameters that SetDefaultValues cannot repair.
func (p ForestParams) Validate() error {
	if err := p.TreeOptions.Validate(); err != nil {
		return err
	}
	if p.NumTrees < 1 {
		return invalidInput("number of trees must be at least 1, got %d", p.NumTrees)
	}
	if p.MinFeatureRatio <= 0 || p.MinFeatureRatio > 1 || math.IsNaN(p.MinFeatureRatio) {
		return invalidInput("minimum feature ratio must be in (0, 1], got %v", p.MinFeatureRatio)
	}
	if p.Workers < 1 {
		return invalidInput("workers must be at least 1, got %d", p.Workers)
	}
	return nil
}

//SampleFeatureSubset draws, without replacement, between ceil(minFeatureRatio*numFeatures)
//and numFeatures column indices, the size being uniform over that range.
//The indices are returned in ascending order.
func SampleFeatureSubset(rng *rand.Rand, numFeatures int, minFeatureRatio float64) []int {
	smallest := int(math.Ceil(minFeatureRatio * float64(numFeatures)))
	if smallest < 1 {
		smallest = 1
	}
	if smallest > numFeatures {
		smallest = numFeatures
	}
	size := smallest + rng.Intn(numFeatures-smallest+1)
	subset := rng.Perm(numFeatures)[:size]
	sort.Ints(subset)
	return subset
}

//TrainForest grows params.NumTrees Hellinger trees, each on a random subset of the
//feature columns and on all the rows. Input and parameters are validated before any
//tree is grown. Feature subsets are drawn in tree order before the growth starts, so
//the forest only depends on the random source, not on the number of workers.
//
//When ctx is done during the growth the returned forest holds the trees completed so
//far, in tree order, and the error is the context error.
func TrainForest(ctx context.Context, features *mat.Dense, labels []float64, params ForestParams) (*Forest, error) {
	if err := ValidateTrainingInput(features, labels); err != nil {
		return nil, err
	}
	h, w := features.Dims()
	params.SetDefaultValues(h)
	if err := params.Validate(); err != nil {
		return nil, err
	}

	rng := params.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(params.Seed))
	}
	subsets := make([][]int, params.NumTrees)
	for i := range subsets {
		subsets[i] = SampleFeatureSubset(rng, w, params.MinFeatureRatio)
	}

	treeParams := params.TreeParams()
	trees := make([]*TreeNode, params.NumTrees)

	eg, egCtx := errgroup.WithContext(ctx)
	slots := make(chan struct{}, params.Workers)
dispatch:
	for i := range subsets {
		select {
		case slots <- struct{}{}:
		case <-egCtx.Done():
			break dispatch
		}
		if egCtx.Err() != nil {
			<-slots
			break
		}
		if params.Progress != nil {
			params.Progress(i)
		}

		i := i
		eg.Go(func() error {
			defer func() { <-slots }()
			if err := egCtx.Err(); err != nil {
				return err
			}
			projected, err := SelectColumns(features, subsets[i])
			if err != nil {
				return err
			}
			tree, err := InduceTree(egCtx, projected, labels, treeParams)
			if err != nil {
				return err
			}
			trees[i] = tree
			splits, leaves := tree.CountNodes()
			log.WithFields(logrus.Fields{
				"tree":     i,
				"features": len(subsets[i]),
				"depth":    tree.Depth(),
				"splits":   splits,
				"leaves":   leaves,
			}).Info("tree grown")
			return nil
		})
	}
	err := eg.Wait()
	if err == nil {
		// stopped between two trees, before any worker saw the cancellation
		err = ctx.Err()
	}

	forest := &Forest{Members: make([]ForestMember, 0, len(trees))}
	for i, tree := range trees {
		if tree != nil {
			forest.Members = append(forest.Members, ForestMember{Tree: tree, FeatureIndices: subsets[i]})
		}
	}
	if err != nil {
		log.WithError(err).Warnf("forest growth stopped after %d of %d trees", len(forest.Members), params.NumTrees)
		return forest, err
	}
	return forest, nil
}
