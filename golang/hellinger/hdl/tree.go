package hdl

import (
	"fmt"
	"strings"
)

//Direction is one step of a walk from the root to a leaf.
type Direction int

const (
	Left Direction = iota
	Right
)

func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

//TreeNode is a node of a Hellinger tree. A node is a leaf when both children are nil,
//otherwise it is a split node and both children are set. Split nodes route an instance
//to Left when instance[Feature] <= Threshold and to Right otherwise.
//Leaves hold the majority Label of their training samples and Score, the fraction of
//positive labels among them.
type TreeNode struct {
	Left, Right *TreeNode

	Feature   int
	Threshold float64
	Distance  float64

	Label int
	Score float64

	NumberOfObjects int
}

//NewLeafNode builds a leaf from the labels of the samples that reached it.
//Ties between the classes resolve to the lower label, 0.
func NewLeafNode(labels []float64) *TreeNode {
	positives := countPositives(labels)
	leaf := &TreeNode{NumberOfObjects: len(labels)}
	if len(labels) > 0 {
		leaf.Score = float64(positives) / float64(len(labels))
	}
	if positives > len(labels)-positives {
		leaf.Label = 1
	}
	return leaf
}

//NewSplitNode builds a split node that owns left and right.
func NewSplitNode(split BestSplit, numberOfObjects int, left, right *TreeNode) *TreeNode {
	if left == nil || right == nil {
		panic("hdl: split node needs two children")
	}
	return &TreeNode{
		Left:            left,
		Right:           right,
		Feature:         split.FeatureIndex,
		Threshold:       split.Threshold,
		Distance:        split.Distance,
		NumberOfObjects: numberOfObjects,
	}
}

//IsLeaf returns whether this node is a leaf.
func (node *TreeNode) IsLeaf() bool {
	return node.Left == nil && node.Right == nil
}

// walk follows row from node down to a leaf, reporting every step to visit when it is set.
func (node *TreeNode) walk(row []float64, visit func(Direction)) *TreeNode {
	current := node
	for !current.IsLeaf() {
		direction := Right
		if row[current.Feature] <= current.Threshold {
			direction = Left
		}
		if visit != nil {
			visit(direction)
		}
		if direction == Left {
			current = current.Left
		} else {
			current = current.Right
		}
	}
	return current
}

//Route walks row from node down to a leaf and returns the leaf and the path taken.
func (node *TreeNode) Route(row []float64) (*TreeNode, []Direction) {
	var path []Direction
	leaf := node.walk(row, func(d Direction) { path = append(path, d) })
	return leaf, path
}

//Depth is the number of edges on the longest root-to-leaf path.
func (node *TreeNode) Depth() int {
	if node.IsLeaf() {
		return 0
	}
	left, right := node.Left.Depth(), node.Right.Depth()
	if left > right {
		return left + 1
	}
	return right + 1
}

//CountNodes returns the number of split nodes and leaves under node, node included.
func (node *TreeNode) CountNodes() (splits, leaves int) {
	if node.IsLeaf() {
		return 0, 1
	}
	ls, ll := node.Left.CountNodes()
	rs, rl := node.Right.CountNodes()
	return ls + rs + 1, ll + rl
}

func (node *TreeNode) maxFeature() int {
	if node.IsLeaf() {
		return -1
	}
	m := node.Feature
	if l := node.Left.maxFeature(); l > m {
		m = l
	}
	if r := node.Right.maxFeature(); r > m {
		m = r
	}
	return m
}

//GraphDescription returns the description of a node for tree rendering as a graph
func (node *TreeNode) GraphDescription() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintln("#", node.NumberOfObjects))
	if node.IsLeaf() {
		sb.WriteString(fmt.Sprintln("label: ", node.Label))
		sb.WriteString(fmt.Sprintf("score: %6.5f", node.Score))
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("hellinger: %6.5f\n", node.Distance))
	sb.WriteString(fmt.Sprintf("f_%d <= %6.5f", node.Feature, node.Threshold))
	return sb.String()
}

func countPositives(labels []float64) int {
	positives := 0
	for _, label := range labels {
		if label == 1 {
			positives++
		}
	}
	return positives
}
