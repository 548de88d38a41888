package hdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatistics(t *testing.T) {
	tests := []struct {
		name        string
		trueLabels  []float64
		predictions []int
		want        Statistics
	}{
		{
			name:        "half of the positives found",
			trueLabels:  []float64{1, 1, 0, 0},
			predictions: []int{1, 0, 0, 0},
			want:        Statistics{Precision: 1, Recall: 0.5, F1: 2.0 / 3},
		},
		{
			name:        "one false alarm",
			trueLabels:  []float64{1, 0, 0, 1},
			predictions: []int{1, 1, 0, 1},
			want:        Statistics{Precision: 2.0 / 3, Recall: 1, F1: 0.8},
		},
		{
			name:        "nothing predicted positive",
			trueLabels:  []float64{1, 0},
			predictions: []int{0, 0},
			want:        Statistics{Precision: 1, Recall: 0, F1: 0},
		},
		{
			name:        "nothing positive",
			trueLabels:  []float64{0, 0},
			predictions: []int{1, 0},
			want:        Statistics{Precision: 0, Recall: 1, F1: 0},
		},
		{
			name:        "precision and recall both zero",
			trueLabels:  []float64{1, 0},
			predictions: []int{0, 1},
			want:        Statistics{Precision: 0, Recall: 0, F1: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetStatistics(tt.trueLabels, tt.predictions)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Precision, got.Precision, 1e-12)
			assert.InDelta(t, tt.want.Recall, got.Recall, 1e-12)
			assert.InDelta(t, tt.want.F1, got.F1, 1e-12)
		})
	}
}

func TestGetStatisticsLengthMismatch(t *testing.T) {
	_, err := GetStatistics([]float64{1, 0}, []int{1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
