package score

import (
	"testing"

	"github.com/opensource-finance/kestrel/internal/domain"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		want      float64
		wantFound bool
	}{
		{
			name:      "ScoreWithExplanation",
			text:      "Score: 0.92 - suspicious pattern",
			want:      0.92,
			wantFound: true,
		},
		{
			name:      "NoNumericContent",
			text:      "no numeric content",
			wantFound: false,
		},
		{
			name:      "ClampedAboveOne",
			text:      "risk 1.5",
			want:      1.0,
			wantFound: true,
		},
		{
			// The sign is not part of the numeric pattern; "-0.3"
			// extracts 0.3. Defined behavior, not a bug.
			name:      "NegativeSignIgnored",
			text:      "-0.3 anomaly",
			want:      0.3,
			wantFound: true,
		},
		{
			// First number wins, even when it is not the score.
			name:      "FirstOfMultipleNumbers",
			text:      "The $4500 charge looks risky, score 0.9",
			want:      1.0, // 4500 clamped
			wantFound: true,
		},
		{
			name:      "IntegerScore",
			text:      "Score: 1 - certain fraud",
			want:      1.0,
			wantFound: true,
		},
		{
			name:      "TrailingDot",
			text:      "0. is not much of a score",
			want:      0,
			wantFound: true,
		},
		{
			name:      "EmptyText",
			text:      "",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Extract(tt.text)
			if found != tt.wantFound {
				t.Fatalf("Extract(%q) found = %v, want %v", tt.text, found, tt.wantFound)
			}
			if found && got != tt.want {
				t.Errorf("Extract(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		score float64
		want  domain.RiskLevel
	}{
		{0.0, domain.RiskLow},
		{0.49, domain.RiskLow},
		{0.5, domain.RiskMedium}, // inclusive lower bound
		{0.79, domain.RiskMedium},
		{0.8, domain.RiskHigh}, // inclusive lower bound
		{1.0, domain.RiskHigh},
	}

	for _, tt := range tests {
		if got := Level(tt.score); got != tt.want {
			t.Errorf("Level(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestLevelMonotonic(t *testing.T) {
	rank := map[domain.RiskLevel]int{
		domain.RiskLow:    0,
		domain.RiskMedium: 1,
		domain.RiskHigh:   2,
	}

	prev := domain.RiskLow
	for s := 0.0; s <= 1.0; s += 0.001 {
		level := Level(s)
		if rank[level] < rank[prev] {
			t.Fatalf("Level not monotonic at score %v: %s after %s", s, level, prev)
		}
		prev = level
	}
}
