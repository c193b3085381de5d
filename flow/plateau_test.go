package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlateau(t *testing.T) {
	tests := []struct {
		name      string
		scores    []float64
		threshold float64
		want      bool
	}{
		{
			name:      "no scores",
			scores:    nil,
			threshold: 0.5,
			want:      false,
		},
		{
			name:      "one score",
			scores:    []float64{5.0},
			threshold: 0.5,
			want:      false,
		},
		{
			name:      "two scores never plateau",
			scores:    []float64{5.0, 5.1},
			threshold: 0.5,
			want:      false,
		},
		{
			name:      "two consecutive small improvements",
			scores:    []float64{5.0, 5.3, 5.5},
			threshold: 0.5,
			want:      true,
		},
		{
			name:      "healthy improvement",
			scores:    []float64{5.0, 6.0, 7.5},
			threshold: 0.5,
			want:      false,
		},
		{
			name:      "small recent but large prior improvement",
			scores:    []float64{6.0, 7.9, 8.0},
			threshold: 0.5,
			want:      false,
		},
		{
			name:      "large recent after small prior improvement",
			scores:    []float64{5.0, 5.1, 7.0},
			threshold: 0.5,
			want:      false,
		},
		{
			name:      "only last pair of improvements considered",
			scores:    []float64{2.0, 6.0, 6.1, 6.2},
			threshold: 0.5,
			want:      true,
		},
		{
			name:      "regression counts as small improvement",
			scores:    []float64{6.0, 5.9, 5.8},
			threshold: 0.5,
			want:      true,
		},
		{
			name:      "improvement equal to threshold is not a plateau",
			scores:    []float64{5.0, 5.5, 6.0},
			threshold: 0.5,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPlateau(tt.scores, tt.threshold))
		})
	}
}
