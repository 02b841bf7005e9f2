package similarity

import (
	"errors"
	"math"
	"testing"

	"github.com/nvandessel/simcheck/internal/align"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name   string
		counts align.Counts
		policy Policy
		want   float64
	}{
		{
			name:   "all matches",
			counts: align.Counts{Match: 5},
			want:   1.0,
		},
		{
			name:   "no matches",
			counts: align.Counts{Substitute: 3},
			want:   0.0,
		},
		{
			name:   "insertions ignored by default",
			counts: align.Counts{Match: 4, Substitute: 2, Insert: 1},
			want:   4.0 / 6.0,
		},
		{
			name:   "insertions counted when enabled",
			counts: align.Counts{Match: 4, Substitute: 2, Insert: 1},
			policy: Policy{CountInsertions: true},
			want:   4.0 / 7.0,
		},
		{
			name:   "deletions always counted",
			counts: align.Counts{Match: 4, Substitute: 2, Delete: 1},
			want:   4.0 / 7.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Ratio(tt.counts, tt.policy)
			if err != nil {
				t.Fatalf("Ratio() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Ratio() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRatio_Degenerate(t *testing.T) {
	tests := []struct {
		name   string
		counts align.Counts
		policy Policy
	}{
		{"empty script", align.Counts{}, Policy{}},
		{"only insertions", align.Counts{Insert: 3}, Policy{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Ratio(tt.counts, tt.policy)
			if !errors.Is(err, ErrDegenerateRatio) {
				t.Errorf("expected ErrDegenerateRatio, got %v", err)
			}
			if got != 0 {
				t.Errorf("Ratio() = %v, want 0", got)
			}
		})
	}

	got, err := Ratio(align.Counts{Insert: 3}, Policy{CountInsertions: true})
	if err != nil || got != 0 {
		t.Errorf("counted insertions: Ratio() = %v, %v; want 0, nil", got, err)
	}
}

func TestScore(t *testing.T) {
	s, err := align.Align([]byte("kitten"), []byte("sitting"), align.Unit)
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}

	got, err := Score(s, Policy{})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if want := 4.0 / 6.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Score() = %v, want %v", got, want)
	}
}

func TestMeanAndPercent(t *testing.T) {
	if got := Mean(); got != 0 {
		t.Errorf("Mean() = %v, want 0", got)
	}
	if got := Mean(1, 0.5); got != 0.75 {
		t.Errorf("Mean(1, 0.5) = %v, want 0.75", got)
	}
	if got := Percent(0.75); got != 75 {
		t.Errorf("Percent(0.75) = %v, want 75", got)
	}
}
