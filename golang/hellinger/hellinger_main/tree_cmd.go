package main

import (
	"os"
	"path"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/tarstars/hellinger_forest/golang/hellinger/hdl"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "fit a single Hellinger tree and evaluate it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var conf TreeConfig
		if err := loadConfig(cmd, treeFlagKeys, &conf); err != nil {
			return err
		}

		train, err := readDataset(conf.Train)
		if err != nil {
			return err
		}
		if train.Labels == nil {
			return errors.New("the train data set needs a labels file")
		}

		log.Infof("fit a tree on %s", train.Name())
		tree, err := hdl.FitTree(cmd.Context(), train.Features, train.Labels, conf.TreeOptions)
		if err != nil {
			return err
		}
		splits, leaves := tree.CountNodes()
		log.WithField("depth", tree.Depth()).Infof("tree has %d splits and %d leaves", splits, leaves)

		predict := func(features mat.Matrix) ([]int, []float64, error) {
			return hdl.PredictTree(tree, features)
		}
		evaluations, err := evaluate(predict, append([]DatasetConfig{conf.Train}, conf.Tests...))
		if err != nil {
			return err
		}
		printReport(os.Stdout, "Hellinger tree", evaluations)

		if conf.Graph.enabled() {
			return renderTree(tree, conf.Graph)
		}
		return nil
	},
}

func renderTree(tree *hdl.TreeNode, conf GraphConfig) error {
	figureType := conf.FigureType
	if figureType == "" {
		figureType = "svg"
	}
	format, err := hdl.GraphFormat(figureType)
	if err != nil {
		return err
	}
	prefix := conf.DumpPrefix
	if prefix == "" {
		prefix = "tree"
	}
	fileName := path.Join(conf.PicturesDirectory, prefix+"."+figureType)
	log.Infof("render the tree into %s", fileName)
	return tree.RenderFile(fileName, format)
}

func init() {
	addTreeFlags(treeCmd)
	RootCmd.AddCommand(treeCmd)
}
