package hdl

import (
	"fmt"
	"io"
	"path"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/pkg/errors"
)

var graphvizFormats = map[string]graphviz.Format{
	"png": graphviz.PNG,
	"svg": graphviz.SVG,
	"jpg": graphviz.JPG,
	"dot": graphviz.XDOT,
}

//GraphFormat maps a figure type (png, svg, jpg or dot) to a graphviz format.
func GraphFormat(figureType string) (graphviz.Format, error) {
	format, ok := graphvizFormats[figureType]
	if !ok {
		return "", errors.Errorf("unknown figure type %q", figureType)
	}
	return format, nil
}

func recurrentDraw(g *cgraph.Graph, node *TreeNode, nextID *int, parentNode *cgraph.Node) error {
	currentNode, err := g.CreateNode(fmt.Sprint(*nextID))
	if err != nil {
		return err
	}
	*nextID++

	if parentNode != nil {
		if _, err := g.CreateEdge("", parentNode, currentNode); err != nil {
			return err
		}
	}

	currentNode.Set("label", node.GraphDescription())
	if node.IsLeaf() {
		currentNode.Set("shape", "box")
		return nil
	}
	if err := recurrentDraw(g, node.Left, nextID, currentNode); err != nil {
		return err
	}
	return recurrentDraw(g, node.Right, nextID, currentNode)
}

//DrawGraph builds a graphviz graph of the tree. The caller closes both returned values.
func (node *TreeNode) DrawGraph() (*graphviz.Graphviz, *cgraph.Graph, error) {
	graphViz := graphviz.New()
	graph, err := graphViz.Graph()
	if err != nil {
		graphViz.Close()
		return nil, nil, err
	}

	nextID := 0
	if err := recurrentDraw(graph, node, &nextID, nil); err != nil {
		graph.Close()
		graphViz.Close()
		return nil, nil, err
	}
	return graphViz, graph, nil
}

//Render writes a picture of the tree to w.
func (node *TreeNode) Render(w io.Writer, format graphviz.Format) error {
	graphViz, graph, err := node.DrawGraph()
	if err != nil {
		return err
	}
	defer graphViz.Close()
	defer graph.Close()
	return graphViz.Render(graph, format, w)
}

//RenderFile writes a picture of the tree to fileName.
func (node *TreeNode) RenderFile(fileName string, format graphviz.Format) error {
	graphViz, graph, err := node.DrawGraph()
	if err != nil {
		return err
	}
	defer graphViz.Close()
	defer graph.Close()
	return errors.Wrapf(graphViz.RenderFilename(graph, format, fileName), "render %s", fileName)
}

//RenderTrees writes one picture per forest member into picturesDirectory, named
//<dumpPrefix>_<index>.<figureType>.
func (f *Forest) RenderTrees(dumpPrefix, figureType, picturesDirectory string) error {
	format, err := GraphFormat(figureType)
	if err != nil {
		return err
	}
	for treeInd, member := range f.Members {
		filename := fmt.Sprintf("%s_%05d.%s", dumpPrefix, treeInd, figureType)
		if err := member.Tree.RenderFile(path.Join(picturesDirectory, filename), format); err != nil {
			return err
		}
	}
	return nil
}
