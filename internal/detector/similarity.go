package detector

import (
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"

	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/models"
)

// StringSimilarity returns a normalized edit-distance similarity between
// two strings in [0, 1]. Both empty is a perfect match; one empty is a
// complete mismatch. Comparison is rune-based, so multi-byte text does
// not skew the distance.
func StringSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	len1 := utf8.RuneCountInString(s1)
	len2 := utf8.RuneCountInString(s2)
	if len1 == 0 || len2 == 0 {
		return 0.0
	}

	maxLen := len1
	if len2 > maxLen {
		maxLen = len2
	}

	distance := levenshtein.ComputeDistance(s1, s2)
	return 1.0 - float64(distance)/float64(maxLen)
}

// amountSimilarity scores how close two monetary amounts are. Opposite
// signs are capped low regardless of magnitude so a charge and its
// refund never look like duplicates. Same-sign amounts are scored by
// relative difference against the tier table.
func (e *Engine) amountSimilarity(a1, a2 decimal.Decimal) float64 {
	if oppositeSigns(a1, a2) {
		return e.config.OppositeSignAmountScore
	}

	diff := a1.Sub(a2).Abs()
	avg := a1.Add(a2).Div(decimal.NewFromInt(2)).Abs()

	if avg.IsZero() {
		if a1.Equal(a2) {
			return 1.0
		}
		return 0.0
	}

	percentDiff, _ := diff.Div(avg).Float64()

	for _, tier := range e.config.AmountTiers {
		if percentDiff < tier.MaxPercentDiff {
			return tier.Score
		}
	}

	residual := 1.0 - percentDiff
	if residual < 0.0 {
		return 0.0
	}
	return residual
}

// dateSimilarity scores date proximity. Two absent dates compare equal;
// an absent date against a present one is a complete mismatch.
func (e *Engine) dateSimilarity(d1, d2 *time.Time) float64 {
	if d1 == nil && d2 == nil {
		return 1.0
	}
	if d1 == nil || d2 == nil {
		return 0.0
	}

	days := daysBetween(*d1, *d2)
	for _, tier := range e.config.DateTiers {
		if days <= tier.MaxDays {
			return tier.Score
		}
	}
	return 0.0
}

// amountsEqual reports whether two amounts are the same within the
// absolute tolerance. The sum is checked alongside the difference so
// that amounts recorded under opposite sign conventions (a -50.00
// charge imported as +50.00) still compare equal.
func (e *Engine) amountsEqual(a1, a2 decimal.Decimal) bool {
	if a1.Sub(a2).Abs().LessThan(e.config.AmountTolerance) {
		return true
	}
	return a1.Add(a2).Abs().LessThan(e.config.AmountTolerance)
}

// datesEqual compares two optional dates, treating two absent dates as
// equal.
func datesEqual(d1, d2 *time.Time) bool {
	if d1 == nil && d2 == nil {
		return true
	}
	if d1 == nil || d2 == nil {
		return false
	}
	return models.DateOnly(*d1).Equal(models.DateOnly(*d2))
}

// daysBetween returns the absolute number of whole days between two
// dates, ignoring time-of-day.
func daysBetween(d1, d2 time.Time) int {
	days := int(models.DateOnly(d2).Sub(models.DateOnly(d1)).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

func oppositeSigns(a1, a2 decimal.Decimal) bool {
	return (a1.IsNegative() && a2.IsPositive()) || (a1.IsPositive() && a2.IsNegative())
}
