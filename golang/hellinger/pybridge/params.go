// SPDX-License-Identifier: Apache-2.0

package main

import "github.com/tarstars/hellinger_forest/golang/hellinger/hdl"

// treeOptions maps the C arguments shared by FitTree and TrainForest; zeros keep
// the library defaults.
func treeOptions(numBins, cutoff, memSplit, memThresh, threadsNum int) hdl.TreeOptions {
	return hdl.TreeOptions{
		NumBins:    numBins,
		Cutoff:     cutoff,
		MemSplit:   memSplit,
		MemThresh:  memThresh,
		ThreadsNum: threadsNum,
	}
}

func forestParams(options hdl.TreeOptions, numTrees int, minFeatureRatio float64, seed int64, workers int) hdl.ForestParams {
	return hdl.ForestParams{
		TreeOptions:     options,
		NumTrees:        numTrees,
		MinFeatureRatio: minFeatureRatio,
		Seed:            seed,
		Workers:         workers,
	}
}
