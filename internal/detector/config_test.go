package detector

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultDetectorConfig(t *testing.T) {
	config := DefaultDetectorConfig()

	if err := config.Validate(); err != nil {
		t.Errorf("default config should be valid, got error: %v", err)
	}

	if config.SimilarityThreshold != 0.90 {
		t.Errorf("expected similarity threshold 0.90, got %f", config.SimilarityThreshold)
	}

	if config.ExactScore != 0.95 {
		t.Errorf("expected exact score 0.95, got %f", config.ExactScore)
	}

	if config.RecurringScore != 0.30 {
		t.Errorf("expected recurring score 0.30, got %f", config.RecurringScore)
	}

	if config.WindowMarginDays != 35 {
		t.Errorf("expected window margin 35 days, got %d", config.WindowMarginDays)
	}

	if config.Recurring.MinDays != 7 || config.Recurring.MaxDays != 60 {
		t.Errorf("expected recurring band 7-60 days, got %d-%d", config.Recurring.MinDays, config.Recurring.MaxDays)
	}
}

func TestConfigFactories(t *testing.T) {
	strict := StrictDetectorConfig()
	relaxed := RelaxedDetectorConfig()

	if err := strict.Validate(); err != nil {
		t.Errorf("strict config should be valid, got error: %v", err)
	}
	if err := relaxed.Validate(); err != nil {
		t.Errorf("relaxed config should be valid, got error: %v", err)
	}

	if strict.SimilarityThreshold <= relaxed.SimilarityThreshold {
		t.Errorf("strict threshold %f should exceed relaxed threshold %f",
			strict.SimilarityThreshold, relaxed.SimilarityThreshold)
	}
}

func TestDetectorConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*DetectorConfig)
		wantErr bool
	}{
		{
			name:    "valid default",
			modify:  func(dc *DetectorConfig) {},
			wantErr: false,
		},
		{
			name:    "threshold above one",
			modify:  func(dc *DetectorConfig) { dc.SimilarityThreshold = 1.5 },
			wantErr: true,
		},
		{
			name:    "negative threshold",
			modify:  func(dc *DetectorConfig) { dc.SimilarityThreshold = -0.1 },
			wantErr: true,
		},
		{
			name:    "recurring score above threshold",
			modify:  func(dc *DetectorConfig) { dc.RecurringScore = 0.95 },
			wantErr: true,
		},
		{
			name:    "negative amount tolerance",
			modify:  func(dc *DetectorConfig) { dc.AmountTolerance = decimal.NewFromFloat(-0.01) },
			wantErr: true,
		},
		{
			name:    "negative window margin",
			modify:  func(dc *DetectorConfig) { dc.WindowMarginDays = -1 },
			wantErr: true,
		},
		{
			name:    "zero lookback",
			modify:  func(dc *DetectorConfig) { dc.EmptyBatchLookbackMonths = 0 },
			wantErr: true,
		},
		{
			name:    "no amount tiers",
			modify:  func(dc *DetectorConfig) { dc.AmountTiers = nil },
			wantErr: true,
		},
		{
			name: "unordered amount tiers",
			modify: func(dc *DetectorConfig) {
				dc.AmountTiers = []AmountTier{
					{MaxPercentDiff: 0.01, Score: 0.7},
					{MaxPercentDiff: 0.001, Score: 1.0},
				}
			},
			wantErr: true,
		},
		{
			name: "unordered date tiers",
			modify: func(dc *DetectorConfig) {
				dc.DateTiers = []DateTier{
					{MaxDays: 7, Score: 0.5},
					{MaxDays: 0, Score: 1.0},
				}
			},
			wantErr: true,
		},
		{
			name: "unordered description weight tiers",
			modify: func(dc *DetectorConfig) {
				dc.DescriptionWeightTiers = []DescriptionWeightTier{
					{MinScore: 0.5, Weight: 0.05},
					{MinScore: 0.95, Weight: 0.30},
				}
			},
			wantErr: true,
		},
		{
			name:    "amount weight above one",
			modify:  func(dc *DetectorConfig) { dc.Weights.Amount = 1.5 },
			wantErr: true,
		},
		{
			name:    "recurring band inverted",
			modify:  func(dc *DetectorConfig) { dc.Recurring.MaxDays = 3 },
			wantErr: true,
		},
		{
			name:    "recurring band zero minimum",
			modify:  func(dc *DetectorConfig) { dc.Recurring.MinDays = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultDetectorConfig()
			tt.modify(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDetectorConfigClone(t *testing.T) {
	original := DefaultDetectorConfig()
	clone := original.Clone()

	clone.SimilarityThreshold = 0.5
	clone.AmountTiers[0].Score = 0.1
	clone.DateTiers[0].Score = 0.1

	if original.SimilarityThreshold != 0.90 {
		t.Error("modifying clone threshold affected original")
	}
	if original.AmountTiers[0].Score != 1.0 {
		t.Error("modifying clone amount tiers affected original")
	}
	if original.DateTiers[0].Score != 1.0 {
		t.Error("modifying clone date tiers affected original")
	}
}

func TestDescriptionWeight(t *testing.T) {
	config := DefaultDetectorConfig()

	tests := []struct {
		score  float64
		weight float64
	}{
		{1.0, 0.30},
		{0.95, 0.30},
		{0.94, 0.05},
		{0.5, 0.05},
		{0.49, 0.01},
		{0.0, 0.01},
	}

	for _, tt := range tests {
		if got := config.DescriptionWeight(tt.score); got != tt.weight {
			t.Errorf("DescriptionWeight(%f) = %f, want %f", tt.score, got, tt.weight)
		}
	}
}
