package detector

import "time"

// isRecurring classifies a same-description, same-amount pair whose
// dates differ. A gap inside the configured band is read as a
// subscription or other periodic charge. A gap of 1-6 days is more
// likely a genuine re-import, and a gap past the band is too sparse a
// signal either way; both fall through to the weighted scorer.
func (e *Engine) isRecurring(d1, d2 *time.Time) bool {
	if d1 == nil || d2 == nil {
		return false
	}

	daysDiff := daysBetween(*d1, *d2)
	return daysDiff >= e.config.Recurring.MinDays && daysDiff <= e.config.Recurring.MaxDays
}
