package hdl

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

//ErrInvalidInput is the cause of every rejected training or prediction input.
var ErrInvalidInput = errors.New("invalid input")

func invalidInput(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}

//ValidateTrainingInput checks the input contract shared by FitTree and TrainForest:
//more than one instance, at least one feature, one label per instance and
//labels drawn from exactly {0, 1} with both values present.
func ValidateTrainingInput(features mat.Matrix, labels []float64) error {
	if features == nil {
		return invalidInput("feature matrix is nil")
	}
	h, w := features.Dims()
	if h <= 1 {
		return invalidInput("feature array is empty or only one instance exists")
	}
	if w == 0 {
		return invalidInput("no feature data")
	}
	if len(labels) != h {
		return invalidInput("number of instances in feature matrix (%d) and label vector (%d) do not match", h, len(labels))
	}
	return ValidateLabels(labels)
}

//ValidateLabels checks that labels hold both 0 and 1 and nothing else.
func ValidateLabels(labels []float64) error {
	positives, negatives := 0, 0
	for i, label := range labels {
		switch label {
		case 1:
			positives++
		case 0:
			negatives++
		default:
			return invalidInput("label %d is %v, labels must be 0 or 1", i, label)
		}
	}
	if positives == 0 || negatives == 0 {
		return invalidInput("labels must contain both 0 and 1 (got %d positives, %d negatives)", positives, negatives)
	}
	return nil
}

func validatePredictionInput(features mat.Matrix) (h, w int, err error) {
	if features == nil {
		return 0, 0, invalidInput("feature matrix is nil")
	}
	h, w = features.Dims()
	if h == 0 {
		return 0, 0, invalidInput("feature array is empty")
	}
	if w == 0 {
		return 0, 0, invalidInput("no feature data")
	}
	return h, w, nil
}
