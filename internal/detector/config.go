// Package detector implements the transaction duplicate detection engine.
//
// Given a batch of candidate transactions, the engine decides which ones
// are already present in the user's history, which are recurring charges
// that merely look similar, and which are genuinely new. It combines:
//   - An identity filter for certain duplicates (shared ids, exact triples)
//   - A recurring-charge disambiguator for subscription-like patterns
//   - A weighted multi-signal similarity score over amount, date,
//     description, and merchant name
//
// The engine holds no state between runs: each Detect call fetches a
// fresh snapshot of existing transactions and classifies the batch as a
// pure function of its inputs.
//
// Example usage:
//
//	engine, err := detector.NewEngine(store, detector.DefaultDetectorConfig())
//	results, err := engine.Detect(ctx, userID, candidates)
package detector

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountTier maps a relative percent-difference upper bound to a score.
// Tiers are evaluated in order; the first tier whose bound exceeds the
// observed difference wins.
type AmountTier struct {
	MaxPercentDiff float64 `json:"max_percent_diff"`
	Score          float64 `json:"score"`
}

// DateTier maps a day-difference upper bound (inclusive) to a score.
type DateTier struct {
	MaxDays int     `json:"max_days"`
	Score   float64 `json:"score"`
}

// DescriptionWeightTier maps a minimum description similarity to the
// weight the description signal receives in the blended score. The
// weight is deliberately asymmetric: only near-exact text counts
// meaningfully, so sequential descriptions like "Transaction 91" vs
// "Transaction 92" contribute almost nothing.
type DescriptionWeightTier struct {
	MinScore float64 `json:"min_score"`
	Weight   float64 `json:"weight"`
}

// SignalWeights defines the relative importance of the fixed-weight
// similarity signals. The description weight is tiered separately.
type SignalWeights struct {
	Amount   float64 `json:"amount_weight"`
	Date     float64 `json:"date_weight"`
	Merchant float64 `json:"merchant_weight"`
}

// RecurringBand is the inclusive day-difference range within which a
// same-description, same-amount pair is classified as a recurring
// charge rather than a duplicate. The band is a wide catch-all, not a
// strict periodicity test: flagging rent as a duplicate is worse than
// occasionally under-flagging a true duplicate a month apart.
type RecurringBand struct {
	MinDays int `json:"min_days"`
	MaxDays int `json:"max_days"`
}

// DetectorConfig holds the tunable parameters of the detection engine.
// All thresholds and scoring tables live here so they can be tuned and
// tested independently of the scoring code.
type DetectorConfig struct {
	// SimilarityThreshold is the minimum blended score for a pair to be
	// surfaced as a possible duplicate
	SimilarityThreshold float64 `json:"similarity_threshold"`

	// ExactScore is returned when description, amount, and date all
	// match but no identity short-circuit applied
	ExactScore float64 `json:"exact_score"`

	// RecurringScore is returned for pairs classified as recurring,
	// deliberately far below the similarity threshold
	RecurringScore float64 `json:"recurring_score"`

	// OppositeSignAmountScore caps the amount signal when the two
	// amounts have opposite signs (a charge vs its refund)
	OppositeSignAmountScore float64 `json:"opposite_sign_amount_score"`

	// AmountTolerance is the absolute tolerance for exact amount
	// equality, checked against both the difference and the sum of the
	// two amounts to tolerate sign convention mismatches
	AmountTolerance decimal.Decimal `json:"amount_tolerance"`

	// WindowMarginDays expands the fetch window on each side of the
	// batch's date span so recurring charges outside the span stay
	// visible to the disambiguator
	WindowMarginDays int `json:"window_margin_days"`

	// EmptyBatchLookbackMonths is the fetch window length used when the
	// batch carries no usable dates
	EmptyBatchLookbackMonths int `json:"empty_batch_lookback_months"`

	AmountTiers            []AmountTier            `json:"amount_tiers"`
	DateTiers              []DateTier              `json:"date_tiers"`
	DescriptionWeightTiers []DescriptionWeightTier `json:"description_weight_tiers"`
	Weights                SignalWeights           `json:"weights"`
	Recurring              RecurringBand           `json:"recurring_band"`
}

// DefaultDetectorConfig returns the production configuration
func DefaultDetectorConfig() *DetectorConfig {
	return &DetectorConfig{
		SimilarityThreshold:      0.90,
		ExactScore:               0.95,
		RecurringScore:           0.30,
		OppositeSignAmountScore:  0.3,
		AmountTolerance:          decimal.NewFromFloat(0.01),
		WindowMarginDays:         35,
		EmptyBatchLookbackMonths: 3,
		AmountTiers: []AmountTier{
			{MaxPercentDiff: 0.001, Score: 1.0},
			{MaxPercentDiff: 0.005, Score: 0.9},
			{MaxPercentDiff: 0.01, Score: 0.7},
			{MaxPercentDiff: 0.05, Score: 0.5},
		},
		DateTiers: []DateTier{
			{MaxDays: 0, Score: 1.0},
			{MaxDays: 1, Score: 0.9},
			{MaxDays: 3, Score: 0.8},
			{MaxDays: 7, Score: 0.5},
			{MaxDays: 30, Score: 0.3},
		},
		DescriptionWeightTiers: []DescriptionWeightTier{
			{MinScore: 0.95, Weight: 0.30},
			{MinScore: 0.5, Weight: 0.05},
			{MinScore: 0.0, Weight: 0.01},
		},
		Weights: SignalWeights{
			Amount:   0.30,
			Date:     0.20,
			Merchant: 0.20,
		},
		Recurring: RecurringBand{
			MinDays: 7,
			MaxDays: 60,
		},
	}
}

// StrictDetectorConfig returns a configuration that only surfaces
// near-certain duplicates
func StrictDetectorConfig() *DetectorConfig {
	config := DefaultDetectorConfig()
	config.SimilarityThreshold = 0.95
	config.WindowMarginDays = 14
	return config
}

// RelaxedDetectorConfig returns a configuration for exploratory review
// that surfaces weaker matches
func RelaxedDetectorConfig() *DetectorConfig {
	config := DefaultDetectorConfig()
	config.SimilarityThreshold = 0.85
	config.WindowMarginDays = 60
	return config
}

// Validate checks if the detector configuration is valid
func (dc *DetectorConfig) Validate() error {
	if dc.SimilarityThreshold < 0.0 || dc.SimilarityThreshold > 1.0 {
		return fmt.Errorf("similarity threshold must be between 0.0 and 1.0: %f", dc.SimilarityThreshold)
	}

	if dc.ExactScore < 0.0 || dc.ExactScore > 1.0 {
		return fmt.Errorf("exact score must be between 0.0 and 1.0: %f", dc.ExactScore)
	}

	if dc.RecurringScore >= dc.SimilarityThreshold {
		return fmt.Errorf("recurring score %f must stay below the similarity threshold %f", dc.RecurringScore, dc.SimilarityThreshold)
	}

	if dc.AmountTolerance.IsNegative() {
		return fmt.Errorf("amount tolerance cannot be negative: %s", dc.AmountTolerance)
	}

	if dc.WindowMarginDays < 0 {
		return fmt.Errorf("window margin days cannot be negative: %d", dc.WindowMarginDays)
	}

	if dc.EmptyBatchLookbackMonths <= 0 {
		return fmt.Errorf("empty batch lookback months must be positive: %d", dc.EmptyBatchLookbackMonths)
	}

	if len(dc.AmountTiers) == 0 {
		return fmt.Errorf("at least one amount tier is required")
	}

	for i := 1; i < len(dc.AmountTiers); i++ {
		if dc.AmountTiers[i].MaxPercentDiff <= dc.AmountTiers[i-1].MaxPercentDiff {
			return fmt.Errorf("amount tiers must be ordered by ascending percent difference")
		}
	}

	if len(dc.DateTiers) == 0 {
		return fmt.Errorf("at least one date tier is required")
	}

	for i := 1; i < len(dc.DateTiers); i++ {
		if dc.DateTiers[i].MaxDays <= dc.DateTiers[i-1].MaxDays {
			return fmt.Errorf("date tiers must be ordered by ascending day difference")
		}
	}

	if len(dc.DescriptionWeightTiers) == 0 {
		return fmt.Errorf("at least one description weight tier is required")
	}

	for i := 1; i < len(dc.DescriptionWeightTiers); i++ {
		if dc.DescriptionWeightTiers[i].MinScore >= dc.DescriptionWeightTiers[i-1].MinScore {
			return fmt.Errorf("description weight tiers must be ordered by descending minimum score")
		}
	}

	if err := dc.Weights.Validate(); err != nil {
		return fmt.Errorf("invalid weights: %w", err)
	}

	if dc.Recurring.MinDays <= 0 {
		return fmt.Errorf("recurring band minimum must be positive: %d", dc.Recurring.MinDays)
	}

	if dc.Recurring.MaxDays < dc.Recurring.MinDays {
		return fmt.Errorf("recurring band maximum %d must not be below minimum %d", dc.Recurring.MaxDays, dc.Recurring.MinDays)
	}

	return nil
}

// Validate checks if the signal weights are valid
func (sw *SignalWeights) Validate() error {
	if sw.Amount < 0.0 || sw.Amount > 1.0 {
		return fmt.Errorf("amount weight must be between 0.0 and 1.0: %f", sw.Amount)
	}

	if sw.Date < 0.0 || sw.Date > 1.0 {
		return fmt.Errorf("date weight must be between 0.0 and 1.0: %f", sw.Date)
	}

	if sw.Merchant < 0.0 || sw.Merchant > 1.0 {
		return fmt.Errorf("merchant weight must be between 0.0 and 1.0: %f", sw.Merchant)
	}

	return nil
}

// Clone creates a deep copy of the detector configuration
func (dc *DetectorConfig) Clone() *DetectorConfig {
	if dc == nil {
		return nil
	}

	clone := *dc
	clone.AmountTiers = append([]AmountTier(nil), dc.AmountTiers...)
	clone.DateTiers = append([]DateTier(nil), dc.DateTiers...)
	clone.DescriptionWeightTiers = append([]DescriptionWeightTier(nil), dc.DescriptionWeightTiers...)

	return &clone
}

// DescriptionWeight returns the blended-score weight for a description
// similarity score
func (dc *DetectorConfig) DescriptionWeight(score float64) float64 {
	for _, tier := range dc.DescriptionWeightTiers {
		if score >= tier.MinScore {
			return tier.Weight
		}
	}
	return 0.0
}

// String returns a human-readable description of the configuration
func (dc *DetectorConfig) String() string {
	return fmt.Sprintf("DetectorConfig{Threshold: %.2f, WindowMargin: %d days, RecurringBand: %d-%d days}",
		dc.SimilarityThreshold, dc.WindowMarginDays, dc.Recurring.MinDays, dc.Recurring.MaxDays)
}
