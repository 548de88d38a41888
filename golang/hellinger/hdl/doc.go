// Package hdl grows Hellinger distance decision trees (HDDT) and feature-bagged
// forests of them for binary, class-imbalanced classification.
//
// A tree is grown by InduceTree: at every node the columns are searched in
// contiguous blocks by HellingerSplit, the (feature, threshold) pair with the
// largest squared Hellinger distance between the positive and the negative
// class distributions wins, and the rows are partitioned with
// value <= threshold going left. FitTree and TrainForest are the validating
// entry points; PredictTree and Forest.Predict walk the trained structure.
package hdl
