package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tarstars/hellinger_forest/golang/hellinger/hdl"
)

//DatasetConfig names the npy files of one data set. Labels may be empty for data
//that is only predicted; Predictions and Scores, when set, receive the output.
type DatasetConfig struct {
	Description string `mapstructure:"description"`
	Features    string `mapstructure:"filename_features"`
	Labels      string `mapstructure:"filename_labels"`
	Predictions string `mapstructure:"filename_predictions"`
	Scores      string `mapstructure:"filename_scores"`
}

//GraphConfig controls the optional pictures of the trained trees.
type GraphConfig struct {
	FigureType        string `mapstructure:"figure_type"`
	PicturesDirectory string `mapstructure:"pictures_directory"`
	DumpPrefix        string `mapstructure:"dump_prefix"`
}

func (c GraphConfig) enabled() bool {
	return c.PicturesDirectory != ""
}

//TreeConfig is the config of the tree command.
type TreeConfig struct {
	Train           DatasetConfig   `mapstructure:"train"`
	Tests           []DatasetConfig `mapstructure:"tests"`
	Graph           GraphConfig     `mapstructure:"graph"`
	hdl.TreeOptions `mapstructure:",squash"`
}

//ForestConfig is the config of the forest command.
type ForestConfig struct {
	Train            DatasetConfig   `mapstructure:"train"`
	Tests            []DatasetConfig `mapstructure:"tests"`
	Graph            GraphConfig     `mapstructure:"graph"`
	hdl.ForestParams `mapstructure:",squash"`
}

// hyperparameter flags and the config keys they override
var treeFlagKeys = map[string]string{
	"num-bins":    "num_bins",
	"cutoff":      "cutoff",
	"mem-split":   "mem_split",
	"mem-thresh":  "mem_thresh",
	"threads-num": "threads_num",
}

var forestFlagKeys = map[string]string{
	"num-trees":         "num_trees",
	"min-feature-ratio": "min_feature_ratio",
	"seed":              "seed",
	"workers":           "workers",
}

func addTreeFlags(cmd *cobra.Command) {
	cmd.Flags().Int("num-bins", 0, "number of equal width bins per feature (default 100)")
	cmd.Flags().Int("cutoff", 0, "largest node that is not split any further (default 10, or 1 for ten instances or less)")
	cmd.Flags().Int("mem-split", 0, "number of feature batches searched one after another (default 1)")
	cmd.Flags().Int("mem-thresh", 0, "node size above which the feature batches apply (default 1)")
	cmd.Flags().Int("threads-num", 0, "number of feature batches searched at the same time (default 1)")
}

func addForestFlags(cmd *cobra.Command) {
	addTreeFlags(cmd)
	cmd.Flags().Int("num-trees", 0, "number of trees in the forest")
	cmd.Flags().Float64("min-feature-ratio", 0, "smallest share of the features a tree is trained on (default 0.8)")
	cmd.Flags().Int64("seed", 0, "seed of the feature sampling")
	cmd.Flags().Int("workers", 0, "number of trees grown at the same time (default 1)")
}

//loadConfig decodes the --config file into out. Hyperparameter flags given on the
//command line and HELLINGER_<KEY> environment variables take precedence over the file.
func loadConfig(cmd *cobra.Command, flagKeys map[string]string, out interface{}) error {
	fileName := viper.GetString("config")
	if fileName == "" {
		return errors.New("a config file is required, use --config")
	}

	v := viper.New()
	v.SetConfigFile(fileName)
	v.SetEnvPrefix("HELLINGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for flagName, key := range flagKeys {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.Wrapf(err, "bind flag %s", flagName)
		}
		if err := v.BindEnv(key); err != nil {
			return errors.Wrapf(err, "bind env of %s", key)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read config %s", fileName)
	}
	if err := v.Unmarshal(out); err != nil {
		return errors.Wrapf(err, "decode config %s", fileName)
	}
	return nil
}
