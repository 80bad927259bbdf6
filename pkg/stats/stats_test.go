package stats

import "testing"

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{0.7}, 0.7},
		{"even", []float64{0.2, 0.4, 0.6, 0.8}, 0.5},
		{"odd", []float64{0.3, 0.6, 0.9}, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.sorted); got != tt.want {
				t.Errorf("Median(%v) = %v, want %v", tt.sorted, got, tt.want)
			}
		})
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	if got := Percentile(sorted, 50); got != 0.6 {
		t.Errorf("Percentile(50) = %v, want 0.6", got)
	}
	if got := Percentile(sorted, 100); got != 1.0 {
		t.Errorf("Percentile(100) = %v, want 1.0", got)
	}
	if got := Percentile(nil, 50); got != 0 {
		t.Errorf("Percentile(empty) = %v, want 0", got)
	}
}
