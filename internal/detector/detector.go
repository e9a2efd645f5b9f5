package detector

import (
	"context"
	"sort"
	"time"

	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/models"
	"github.com/aksumit1/BudgetBuddy-backend-sub006/pkg/errors"
	"github.com/aksumit1/BudgetBuddy-backend-sub006/pkg/logger"
)

// TransactionSource supplies the existing transactions a batch is
// checked against. Implementations must return every transaction for
// the user whose date falls within the closed interval [start, end];
// order is not significant. Returning an empty slice is a valid
// response and means no duplicates are possible.
type TransactionSource interface {
	FetchByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]*models.ExistingTransaction, error)
}

// Batches at or above this size get interval-based progress logging.
const progressBatchSize = 500

// Engine runs duplicate detection for candidate batches. It holds no
// state between runs; concurrent Detect calls are safe.
type Engine struct {
	source TransactionSource
	config *DetectorConfig
	logger logger.Logger
	now    func() time.Time
}

// NewEngine creates a detection engine backed by the given transaction
// source. A nil config selects the default configuration.
func NewEngine(source TransactionSource, config *DetectorConfig) (*Engine, error) {
	if source == nil {
		return nil, errors.ValidationError(errors.CodeMissingField, "transaction_source", nil, nil)
	}

	if config == nil {
		config = DefaultDetectorConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "detector", config.String(), err)
	}

	return &Engine{
		source: source,
		config: config.Clone(),
		logger: logger.GetGlobalLogger().WithComponent("detector"),
		now:    time.Now,
	}, nil
}

// Config returns a copy of the engine's configuration
func (e *Engine) Config() *DetectorConfig {
	return e.config.Clone()
}

// Detect classifies a candidate batch against the user's existing
// transactions. The returned set maps zero-based batch indices to their
// classifications; indices with no duplicate signal are absent. The
// input batch is not mutated.
func (e *Engine) Detect(ctx context.Context, userID string, candidates []*models.CandidateTransaction) (ResultSet, error) {
	results := make(ResultSet)

	if len(candidates) == 0 {
		return results, nil
	}

	start, end := e.queryWindow(candidates)
	existing, err := e.source.FetchByUserAndDateRange(ctx, userID, start, end)
	if err != nil {
		return nil, errors.DetectionError(errors.CodeFetchFailed, "duplicate_detection", err).
			WithContext("user_id", userID).
			WithContext("window_start", start.Format(models.DateFormat)).
			WithContext("window_end", end.Format(models.DateFormat))
	}

	e.logger.WithFields(logger.Fields{
		"user_id":      userID,
		"candidates":   len(candidates),
		"existing":     len(existing),
		"window_start": start.Format(models.DateFormat),
		"window_end":   end.Format(models.DateFormat),
	}).Info("Checking candidate batch against existing transactions")

	if len(existing) == 0 {
		e.logger.Info("No existing transactions in window, skipping duplicate detection")
		return results, nil
	}

	var progress *logger.ProgressTracker
	if len(candidates) >= progressBatchSize {
		progress = logger.NewProgressTracker(logger.ProgressConfig{
			Operation: "duplicate_detection",
			Total:     int64(len(candidates)),
			Logger:    e.logger,
		})
	}

	for i, candidate := range candidates {
		result, ok := e.classifyCandidate(candidate, existing)
		if ok {
			results[i] = result
		}
		if progress != nil {
			progress.Increment()
		}
	}

	if progress != nil {
		progress.Complete()
	}

	e.logger.WithFields(logger.Fields{
		"flagged":    len(results),
		"batch_size": len(candidates),
	}).Info("Duplicate detection completed")

	return results, nil
}

// DetectMatchLists runs Detect and flattens the result into the
// index-to-match-list shape used by batch import callers.
func (e *Engine) DetectMatchLists(ctx context.Context, userID string, candidates []*models.CandidateTransaction) (map[int][]MatchCandidate, error) {
	results, err := e.Detect(ctx, userID, candidates)
	if err != nil {
		return nil, err
	}
	return results.MatchLists(), nil
}

// classifyCandidate scans the existing transactions for one candidate.
// The second return value is false when the candidate has no duplicate
// signal at all.
func (e *Engine) classifyCandidate(candidate *models.CandidateTransaction, existing []*models.ExistingTransaction) (Result, bool) {
	if candidate == nil {
		return Result{}, false
	}

	var matches []MatchCandidate

	for _, ex := range existing {
		if ex == nil {
			continue
		}

		// Identity means certainly the same transaction: drop silently,
		// discarding any weaker matches collected so far.
		if e.isIdentityMatch(candidate, ex) {
			e.logger.WithFields(logger.Fields{
				"candidate": candidate.String(),
				"existing":  ex.TransactionID,
			}).Debug("Identity match found, filtering candidate from import")
			return Result{Classification: ClassificationSkip, Matches: []MatchCandidate{}}, true
		}

		score, ok := e.scorePair(candidate, ex)
		if !ok {
			continue
		}

		if score >= e.config.SimilarityThreshold {
			matches = append(matches, MatchCandidate{
				Existing: ex,
				Score:    score,
				Reasons:  e.matchReasons(candidate, ex),
			})
		}
	}

	if len(matches) == 0 {
		return Result{}, false
	}

	// Stable sort keeps the original scan order for tied scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return Result{Classification: ClassificationMatches, Matches: matches}, true
}
