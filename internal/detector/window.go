package detector

import (
	"time"

	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/models"
)

// queryWindow derives the closed date interval to fetch existing
// transactions for. The batch's date span is expanded by the configured
// margin on each side so recurring charges and statement-boundary
// transactions outside the span stay visible to the disambiguator and
// the identity filter. A batch with no usable dates falls back to a
// fixed lookback ending now.
func (e *Engine) queryWindow(candidates []*models.CandidateTransaction) (time.Time, time.Time) {
	var minDate, maxDate *time.Time
	for _, candidate := range candidates {
		if candidate == nil || candidate.Date == nil {
			continue
		}
		d := models.DateOnly(*candidate.Date)
		if minDate == nil || d.Before(*minDate) {
			minDate = &d
		}
		if maxDate == nil || d.After(*maxDate) {
			maxDate = &d
		}
	}

	now := models.DateOnly(e.now())
	if minDate == nil {
		fallback := now.AddDate(0, -e.config.EmptyBatchLookbackMonths, 0)
		minDate = &fallback
	}
	if maxDate == nil {
		maxDate = &now
	}

	start := minDate.AddDate(0, 0, -e.config.WindowMarginDays)
	end := maxDate.AddDate(0, 0, e.config.WindowMarginDays)
	return start, end
}
