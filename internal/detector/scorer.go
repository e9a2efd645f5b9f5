package detector

import (
	"strings"

	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/models"
	"github.com/aksumit1/BudgetBuddy-backend-sub006/pkg/logger"
)

// scoreSimilarity blends the amount, date, description, and merchant
// signals into a single score in [0, 1]. Exact field triples
// short-circuit high, recurring patterns short-circuit low, and
// everything else goes through the weighted sum.
func (e *Engine) scoreSimilarity(candidate *models.CandidateTransaction, existing *models.ExistingTransaction) float64 {
	desc1 := candidate.NormalizedDescription()
	desc2 := models.NormalizeText(existing.Description)
	descriptionsMatch := desc1 == desc2

	amountMatch := e.amountsEqual(candidate.Amount, existing.Amount)
	dateMatch := datesEqual(candidate.Date, existing.Date())

	if descriptionsMatch && amountMatch && dateMatch {
		return e.config.ExactScore
	}

	if descriptionsMatch && amountMatch && !dateMatch {
		if e.isRecurring(candidate.Date, existing.Date()) {
			return e.config.RecurringScore
		}
	}

	total := e.amountSimilarity(candidate.Amount, existing.Amount) * e.config.Weights.Amount
	total += e.dateSimilarity(candidate.Date, existing.Date()) * e.config.Weights.Date

	descriptionScore := StringSimilarity(desc1, desc2)
	total += descriptionScore * e.config.DescriptionWeight(descriptionScore)

	if candidate.MerchantName != "" && existing.MerchantName != "" {
		merchantScore := StringSimilarity(
			models.NormalizeText(candidate.MerchantName),
			models.NormalizeText(existing.MerchantName),
		)
		total += merchantScore * e.config.Weights.Merchant
	}

	if total > 1.0 {
		return 1.0
	}
	return total
}

// scorePair wraps scoreSimilarity with per-pair failure isolation so an
// unexpected panic on one comparison cannot abort the whole batch.
func (e *Engine) scorePair(candidate *models.CandidateTransaction, existing *models.ExistingTransaction) (score float64, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(logger.Fields{
				"candidate": candidate.String(),
				"existing":  existing.TransactionID,
				"panic":     r,
			}).Warn("Scoring failed for transaction pair, skipping")
			score = 0.0
			ok = false
		}
	}()
	return e.scoreSimilarity(candidate, existing), true
}

// matchReasons builds the human-readable reasons shown alongside a
// surfaced match.
func (e *Engine) matchReasons(candidate *models.CandidateTransaction, existing *models.ExistingTransaction) []string {
	var reasons []string

	if e.amountsEqual(candidate.Amount, existing.Amount) {
		reasons = append(reasons, "same amount")
	}

	if datesEqual(candidate.Date, existing.Date()) {
		reasons = append(reasons, "same date")
	}

	desc1 := candidate.NormalizedDescription()
	desc2 := models.NormalizeText(existing.Description)
	if desc1 == desc2 {
		reasons = append(reasons, "same description")
	} else if StringSimilarity(desc1, desc2) > 0.8 {
		reasons = append(reasons, "similar description")
	}

	return reasons
}

// FormatReasons joins match reasons into the display form used in
// reports and review prompts.
func FormatReasons(reasons []string) string {
	return strings.Join(reasons, ", ")
}
