package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/tarstars/hellinger_forest/golang/hellinger/hdl"
)

// predictor is Forest.Predict or PredictTree bound to a tree.
type predictor func(features mat.Matrix) ([]int, []float64, error)

type evaluation struct {
	name      string
	instances int
	stats     *hdl.Statistics
}

func readDataset(conf DatasetConfig) (hdl.Dataset, error) {
	ds, err := hdl.ReadDataset(conf.Features, conf.Labels)
	if err != nil {
		return ds, err
	}
	description := conf.Description
	if description == "" {
		description = conf.Features
	}
	ds.SetDescription(description)
	return ds, nil
}

//evaluate predicts every data set, stores the requested outputs and scores the
//data sets that come with labels.
func evaluate(predict predictor, datasets []DatasetConfig) ([]evaluation, error) {
	var evaluations []evaluation
	for _, conf := range datasets {
		ds, err := readDataset(conf)
		if err != nil {
			return nil, err
		}
		labels, scores, err := predict(ds.Features)
		if err != nil {
			return nil, errors.Wrapf(err, "predict %s", ds.Name())
		}
		if err := writePredictions(conf, labels, scores); err != nil {
			return nil, err
		}

		e := evaluation{name: ds.Name(), instances: len(labels)}
		if ds.Labels != nil {
			stats, err := hdl.GetStatistics(ds.Labels, labels)
			if err != nil {
				return nil, errors.Wrapf(err, "score %s", ds.Name())
			}
			e.stats = &stats
			log.WithField("dataset", e.name).Infof("precision %.5f recall %.5f f1 %.5f", stats.Precision, stats.Recall, stats.F1)
		}
		evaluations = append(evaluations, e)
	}
	return evaluations, nil
}

func writePredictions(conf DatasetConfig, labels []int, scores []float64) error {
	if conf.Predictions != "" {
		column := mat.NewDense(len(labels), 1, nil)
		for i, label := range labels {
			column.Set(i, 0, float64(label))
		}
		if err := hdl.WriteNpy(conf.Predictions, column); err != nil {
			return err
		}
	}
	if conf.Scores != "" {
		if err := hdl.WriteNpy(conf.Scores, mat.NewDense(len(scores), 1, scores)); err != nil {
			return err
		}
	}
	return nil
}

func printReport(w io.Writer, title string, evaluations []evaluation) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"data set", "instances", "precision", "recall", "f1"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	for _, e := range evaluations {
		if e.stats == nil {
			t.AppendRow(table.Row{e.name, e.instances, "-", "-", "-"})
			continue
		}
		t.AppendRow(table.Row{
			e.name,
			e.instances,
			fmt.Sprintf("%.5f", e.stats.Precision),
			fmt.Sprintf("%.5f", e.stats.Recall),
			fmt.Sprintf("%.5f", e.stats.F1),
		})
	}
	t.Render()
}
