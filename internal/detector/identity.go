package detector

import (
	"strings"

	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/models"
)

// isIdentityMatch reports whether the candidate is certainly the same
// transaction as the existing one. Identity matches are silently
// dropped from the batch rather than surfaced for review: re-imports of
// the same file or sync overlaps are routine and need no user decision.
func (e *Engine) isIdentityMatch(candidate *models.CandidateTransaction, existing *models.ExistingTransaction) bool {
	if sameTransactionID(candidate.TransactionID, existing.TransactionID) {
		return true
	}
	if sameExternalID(candidate.ExternalID, existing.ExternalID) {
		return true
	}
	// An exact field triple counts as identity only when no identifier
	// contradicts it. If the two records carry distinct ids, the source
	// system says they are different transactions, so the pair goes to
	// the scorer and is surfaced for review instead of silently dropped.
	if distinctIdentifiers(candidate, existing) {
		return false
	}
	return e.exactTripleMatch(candidate, existing)
}

func distinctIdentifiers(candidate *models.CandidateTransaction, existing *models.ExistingTransaction) bool {
	if candidate.TransactionID != "" && existing.TransactionID != "" &&
		!strings.EqualFold(candidate.TransactionID, existing.TransactionID) {
		return true
	}
	return candidate.ExternalID != "" && existing.ExternalID != "" &&
		candidate.ExternalID != existing.ExternalID
}

// sameTransactionID compares internal transaction ids
// case-insensitively. Internal ids pass through storage layers with
// inconsistent casing, so a case-sensitive compare would miss
// re-imports.
func sameTransactionID(id1, id2 string) bool {
	if id1 == "" || id2 == "" {
		return false
	}
	return strings.EqualFold(id1, id2)
}

// sameExternalID compares provider-assigned ids exactly. External ids
// are opaque tokens whose casing may be significant to the provider.
func sameExternalID(id1, id2 string) bool {
	if id1 == "" || id2 == "" {
		return false
	}
	return id1 == id2
}

// exactTripleMatch reports whether normalized description, amount, and
// date all match exactly.
func (e *Engine) exactTripleMatch(candidate *models.CandidateTransaction, existing *models.ExistingTransaction) bool {
	if candidate.NormalizedDescription() != models.NormalizeText(existing.Description) {
		return false
	}
	if !e.amountsEqual(candidate.Amount, existing.Amount) {
		return false
	}
	return datesEqual(candidate.Date, existing.Date())
}
