package store

import (
	"context"
	"sort"
	"time"

	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/models"
	"github.com/aksumit1/BudgetBuddy-backend-sub006/pkg/logger"
)

// CSVStore serves existing transactions loaded from a CSV export,
// indexed by user. It implements the transaction source contract the
// detection engine fetches through. The store is read-only after
// construction, so concurrent fetches need no locking.
type CSVStore struct {
	byUser map[string][]*models.ExistingTransaction
	logger logger.Logger
}

// NewCSVStore loads an existing-transaction export into memory. Records
// that fail to parse are reported through the returned stats.
func NewCSVStore(filePath string, config *ExistingParserConfig) (*CSVStore, *ParseStats, error) {
	parser := NewExistingParser(config)
	transactions, stats, err := parser.ParseFile(filePath)
	if err != nil {
		return nil, stats, err
	}

	byUser := make(map[string][]*models.ExistingTransaction)
	for _, transaction := range transactions {
		byUser[transaction.UserID] = append(byUser[transaction.UserID], transaction)
	}

	log := logger.GetGlobalLogger().WithComponent("csv_store")
	log.WithFields(logger.Fields{
		"file_path": filePath,
		"records":   len(transactions),
		"users":     len(byUser),
	}).Info("Loaded transaction store")

	return &CSVStore{byUser: byUser, logger: log}, stats, nil
}

// FetchByUserAndDateRange returns the user's transactions whose date
// falls within the closed interval [start, end]. Records without a
// parsable date are not served, matching the behavior of a range query
// on a date key.
func (s *CSVStore) FetchByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]*models.ExistingTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	startDay := models.DateOnly(start)
	endDay := models.DateOnly(end)

	var results []*models.ExistingTransaction
	for _, transaction := range s.byUser[userID] {
		date := transaction.Date()
		if date == nil {
			continue
		}
		if date.Before(startDay) || date.After(endDay) {
			continue
		}
		results = append(results, transaction)
	}

	s.logger.WithFields(logger.Fields{
		"user_id": userID,
		"start":   startDay.Format(models.DateFormat),
		"end":     endDay.Format(models.DateFormat),
		"matched": len(results),
	}).Debug("Fetched transactions for date range")

	return results, nil
}

// Users returns the user ids present in the store, sorted
func (s *CSVStore) Users() []string {
	users := make([]string, 0, len(s.byUser))
	for user := range s.byUser {
		users = append(users, user)
	}
	sort.Strings(users)
	return users
}

// Count returns the number of transactions held for a user
func (s *CSVStore) Count(userID string) int {
	return len(s.byUser[userID])
}
