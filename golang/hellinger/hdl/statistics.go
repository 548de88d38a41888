package hdl

import "gonum.org/v1/gonum/floats"

//Statistics are the binary classification scores of a set of predictions.
type Statistics struct {
	Precision float64
	Recall    float64
	F1        float64
}

//GetStatistics computes precision, recall and F1 of predictions against trueLabels.
//Precision is 1 when nothing is predicted positive, recall is 1 when nothing is
//positive and F1 is 0 when both precision and recall are 0.
func GetStatistics(trueLabels []float64, predictions []int) (Statistics, error) {
	if len(trueLabels) != len(predictions) {
		return Statistics{}, invalidInput("%d true labels but %d predictions", len(trueLabels), len(predictions))
	}
	predicted := make([]float64, len(predictions))
	for i, p := range predictions {
		predicted[i] = float64(p)
	}

	truePositives := floats.Dot(trueLabels, predicted)
	predictedPositives := floats.Sum(predicted)
	positives := floats.Sum(trueLabels)

	var stats Statistics
	stats.Precision = 1.0
	if predictedPositives != 0 {
		stats.Precision = truePositives / predictedPositives
	}
	stats.Recall = 1.0
	if positives != 0 {
		stats.Recall = truePositives / positives
	}
	if stats.Precision+stats.Recall != 0 {
		stats.F1 = 2 * stats.Precision * stats.Recall / (stats.Precision + stats.Recall)
	}
	return stats, nil
}
