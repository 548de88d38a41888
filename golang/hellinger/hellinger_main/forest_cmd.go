package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tarstars/hellinger_forest/golang/hellinger/hdl"
)

var forestCmd = &cobra.Command{
	Use:   "forest",
	Short: "grow a Hellinger forest and evaluate it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var conf ForestConfig
		if err := loadConfig(cmd, forestFlagKeys, &conf); err != nil {
			return err
		}
		showProgress, err := cmd.Flags().GetBool("progress")
		if err != nil {
			return err
		}
		showBar, err := cmd.Flags().GetBool("progress-bar")
		if err != nil {
			return err
		}

		train, err := readDataset(conf.Train)
		if err != nil {
			return err
		}
		if train.Labels == nil {
			return errors.New("the train data set needs a labels file")
		}

		params := conf.ForestParams
		var bar *pb.ProgressBar
		switch {
		case showBar:
			bar = pb.Full.Start(params.NumTrees)
			bar.SetTemplateString(`{{ "trees" | green }} | {{counters . }} {{bar . }} {{percent . }} {{etime . }} {{rtime . "ETA %s"}}`)
			params.Progress = func(int) { bar.Increment() }
		case showProgress:
			params.Progress = func(treeIndex int) {
				fmt.Printf("Growing Tree Number: %d\n", treeIndex+1)
			}
		}

		log.Infof("grow %d trees on %s", params.NumTrees, train.Name())
		forest, err := hdl.TrainForest(cmd.Context(), train.Features, train.Labels, params)
		if bar != nil {
			bar.Finish()
		}
		if err != nil {
			if forest == nil || !errors.Is(err, context.Canceled) {
				return err
			}
			log.WithError(err).Warnf("evaluating the %d trees grown before the interruption", len(forest.Members))
		}
		if len(forest.Members) == 0 {
			return errors.New("no tree was grown")
		}

		evaluations, err := evaluate(forest.Predict, append([]DatasetConfig{conf.Train}, conf.Tests...))
		if err != nil {
			return err
		}
		printReport(os.Stdout, fmt.Sprintf("Hellinger forest of %d trees", len(forest.Members)), evaluations)

		if conf.Graph.enabled() {
			figureType := conf.Graph.FigureType
			if figureType == "" {
				figureType = "svg"
			}
			prefix := conf.Graph.DumpPrefix
			if prefix == "" {
				prefix = "tree"
			}
			log.Infof("render %d trees into %s", len(forest.Members), conf.Graph.PicturesDirectory)
			return forest.RenderTrees(prefix, figureType, conf.Graph.PicturesDirectory)
		}
		return nil
	},
}

func init() {
	addForestFlags(forestCmd)
	forestCmd.Flags().Bool("progress", false, "print the number of every tree before it is grown")
	forestCmd.Flags().Bool("progress-bar", false, "show a progress bar while the trees grow")
	RootCmd.AddCommand(forestCmd)
}
