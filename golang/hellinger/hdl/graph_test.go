package hdl

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-graphviz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphFormat(t *testing.T) {
	format, err := GraphFormat("svg")
	require.NoError(t, err)
	assert.Equal(t, graphviz.SVG, format)

	_, err = GraphFormat("bmp")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleTree().Render(&buf, graphviz.XDOT))
	assert.Contains(t, buf.String(), "f_0 <= 1.00000")
	assert.Contains(t, buf.String(), "score: 0.75000")
}

func TestRenderTrees(t *testing.T) {
	dir := t.TempDir()
	forest := &Forest{Members: []ForestMember{
		{Tree: sampleTree(), FeatureIndices: []int{0, 1, 2}},
		{Tree: leafOf(1, 1, 2), FeatureIndices: []int{1}},
	}}
	require.NoError(t, forest.RenderTrees("tree", "dot", dir))

	for _, name := range []string{"tree_00000.dot", "tree_00001.dot"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size())
	}

	assert.Error(t, forest.RenderTrees("tree", "bmp", dir))
}
