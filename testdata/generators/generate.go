// Command generate produces paired CSV fixtures for duplicate detection:
// an existing-transaction ledger and a candidate batch that re-imports a
// controlled share of the ledger with known mutations.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var merchants = []string{
	"Starbucks", "Netflix", "Whole Foods", "Shell", "Amazon",
	"Spotify", "Target", "Uber", "Delta Airlines", "CVS Pharmacy",
}

var descriptions = []string{
	"Coffee", "Monthly subscription", "Groceries", "Fuel", "Online order",
	"Music streaming", "Household supplies", "Ride downtown", "Flight booking", "Prescription refill",
}

// LedgerRecord is one row of the existing-transaction fixture
type LedgerRecord struct {
	UserID        string
	TransactionID string
	ExternalID    string
	Date          time.Time
	Amount        decimal.Decimal
	Description   string
	Merchant      string
}

// BatchRecord is one row of the candidate fixture
type BatchRecord struct {
	Date          time.Time
	Amount        decimal.Decimal
	Description   string
	Merchant      string
	TransactionID string
	ExternalID    string
}

func main() {
	var (
		ledgerOut  = flag.String("ledger-output", "existing_transactions.csv", "Output path for the existing transaction CSV")
		batchOut   = flag.String("batch-output", "candidate_batch.csv", "Output path for the candidate batch CSV")
		user       = flag.String("user", "user-1", "User id stamped on every ledger row")
		count      = flag.Int("count", 500, "Number of ledger transactions to generate")
		batchCount = flag.Int("batch-count", 100, "Number of candidate transactions to generate")
		startDate  = flag.String("start-date", "2024-01-01", "Ledger start date (YYYY-MM-DD)")
		endDate    = flag.String("end-date", "2024-06-30", "Ledger end date (YYYY-MM-DD)")
		dupRate    = flag.Float64("duplicate-rate", 0.3, "Fraction of the batch drawn from the ledger")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible generation")
	)
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		log.Fatalf("Invalid start date: %v", err)
	}
	end, err := time.Parse("2006-01-02", *endDate)
	if err != nil {
		log.Fatalf("Invalid end date: %v", err)
	}
	if !start.Before(end) {
		log.Fatalf("Start date must be before end date")
	}

	rng := rand.New(rand.NewSource(*seed))

	ledger := generateLedger(rng, *user, *count, start, end)
	batch := generateBatch(rng, ledger, *batchCount, *dupRate, start, end)

	if err := writeLedgerCSV(*ledgerOut, ledger); err != nil {
		log.Fatalf("Failed to write ledger CSV: %v", err)
	}
	if err := writeBatchCSV(*batchOut, batch); err != nil {
		log.Fatalf("Failed to write batch CSV: %v", err)
	}

	fmt.Printf("Generated %d ledger transactions in %s\n", len(ledger), *ledgerOut)
	fmt.Printf("Generated %d candidates in %s (duplicate rate %.0f%%)\n", len(batch), *batchOut, *dupRate*100)
	fmt.Printf("Seed used: %d\n", *seed)
}

func generateLedger(rng *rand.Rand, userID string, count int, start, end time.Time) []LedgerRecord {
	days := int(end.Sub(start).Hours() / 24)
	records := make([]LedgerRecord, count)

	for i := 0; i < count; i++ {
		idx := rng.Intn(len(merchants))
		amount := randomAmount(rng)

		records[i] = LedgerRecord{
			UserID:        userID,
			TransactionID: uuid.NewString(),
			ExternalID:    fmt.Sprintf("bank-%08d", rng.Intn(100000000)),
			Date:          start.AddDate(0, 0, rng.Intn(days+1)),
			Amount:        amount,
			Description:   descriptions[idx],
			Merchant:      merchants[idx],
		}
	}

	return records
}

// generateBatch draws duplicates from the ledger and pads the rest with
// fresh transactions. Duplicates rotate over four shapes so a fixture
// exercises every classification: same id, same triple without ids,
// near match with a drifted amount or date, and a month-later recurring
// charge.
func generateBatch(rng *rand.Rand, ledger []LedgerRecord, count int, dupRate float64, start, end time.Time) []BatchRecord {
	days := int(end.Sub(start).Hours() / 24)
	batch := make([]BatchRecord, 0, count)
	dupCount := int(float64(count) * dupRate)
	if dupCount > len(ledger) {
		dupCount = len(ledger)
	}

	for i := 0; i < dupCount; i++ {
		src := ledger[rng.Intn(len(ledger))]
		record := BatchRecord{
			Date:        src.Date,
			Amount:      src.Amount,
			Description: src.Description,
			Merchant:    src.Merchant,
		}

		switch i % 4 {
		case 0: // re-import carrying the source id
			record.TransactionID = src.TransactionID
		case 1: // identical fields, no ids
		case 2: // near duplicate with drifted amount and date
			drift := decimal.NewFromFloat(0.01 + rng.Float64()*0.03)
			record.Amount = src.Amount.Mul(decimal.NewFromInt(1).Add(drift)).Round(2)
			record.Date = src.Date.AddDate(0, 0, rng.Intn(3)+1)
		case 3: // recurring charge one month later
			record.Date = src.Date.AddDate(0, 1, 0)
			record.ExternalID = fmt.Sprintf("bank-%08d", rng.Intn(100000000))
		}

		batch = append(batch, record)
	}

	for i := dupCount; i < count; i++ {
		idx := rng.Intn(len(merchants))
		batch = append(batch, BatchRecord{
			Date:        start.AddDate(0, 0, rng.Intn(days+1)),
			Amount:      randomAmount(rng),
			Description: descriptions[idx],
			Merchant:    merchants[idx],
			ExternalID:  fmt.Sprintf("bank-%08d", rng.Intn(100000000)),
		})
	}

	rng.Shuffle(len(batch), func(i, j int) {
		batch[i], batch[j] = batch[j], batch[i]
	})

	return batch
}

func randomAmount(rng *rand.Rand) decimal.Decimal {
	// Expenses dominate; the occasional credit keeps sign handling honest.
	amount := decimal.NewFromFloat(1.0 + rng.Float64()*499.0).Round(2)
	if rng.Float64() < 0.85 {
		amount = amount.Neg()
	}
	return amount
}

func writeLedgerCSV(filename string, records []LedgerRecord) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"user_id", "transaction_id", "external_id", "date", "amount", "description", "merchant_name"}); err != nil {
		return err
	}

	for _, r := range records {
		record := []string{
			r.UserID,
			r.TransactionID,
			r.ExternalID,
			r.Date.Format("2006-01-02"),
			r.Amount.String(),
			r.Description,
			r.Merchant,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func writeBatchCSV(filename string, records []BatchRecord) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"date", "amount", "description", "merchant_name", "transaction_id", "external_id"}); err != nil {
		return err
	}

	for _, r := range records {
		record := []string{
			r.Date.Format("2006-01-02"),
			r.Amount.String(),
			r.Description,
			r.Merchant,
			r.TransactionID,
			r.ExternalID,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}
