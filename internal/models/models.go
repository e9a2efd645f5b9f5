// Package models defines the transaction records flowing through the
// duplicate detection engine: candidates produced by the import pipeline
// and existing records read from the transaction store.
//
// Both record types are immutable snapshots within a detection run.
// Monetary amounts use decimal arithmetic; by convention a negative
// amount is a debit/expense. Dates are calendar dates (midnight UTC) and
// may be absent: an unparsable or missing date degrades to a nil date
// rather than an error.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the canonical calendar-date representation used across
// the engine and the store.
const DateFormat = "2006-01-02"

// transactionDateFormats lists the date layouts accepted when parsing
// defensively, most common first.
var transactionDateFormats = []string{
	DateFormat,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// ParseTransactionDate parses a date string defensively. It returns the
// calendar date truncated to midnight UTC, or nil if the value is empty
// or matches none of the accepted layouts.
func ParseTransactionDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	for _, layout := range transactionDateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			d := DateOnly(t)
			return &d
		}
	}

	return nil
}

// DateOnly truncates a time to its calendar date at midnight UTC.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NormalizeText lower-cases and trims a text field for comparison. Nil
// and empty inputs both normalize to the empty string.
func NormalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CandidateTransaction is a newly-imported or newly-synced transaction
// that has not yet been confirmed against the user's history.
type CandidateTransaction struct {
	TransactionID string          `json:"transactionId,omitempty"`
	ExternalID    string          `json:"externalId,omitempty"`
	Date          *time.Time      `json:"date,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	MerchantName  string          `json:"merchantName,omitempty"`
}

// NewCandidateTransaction creates a new CandidateTransaction instance
func NewCandidateTransaction(date *time.Time, amount decimal.Decimal, description, merchantName string) *CandidateTransaction {
	return &CandidateTransaction{
		Date:         date,
		Amount:       amount,
		Description:  description,
		MerchantName: merchantName,
	}
}

// Validate performs basic validation on the CandidateTransaction
func (c *CandidateTransaction) Validate() error {
	if c.Amount.IsZero() {
		return fmt.Errorf("candidate amount cannot be zero")
	}

	if c.Date == nil && strings.TrimSpace(c.Description) == "" {
		return fmt.Errorf("candidate must have at least a date or a description")
	}

	return nil
}

// NormalizedDescription returns the description normalized for comparison
func (c *CandidateTransaction) NormalizedDescription() string {
	return NormalizeText(c.Description)
}

// String returns a string representation of the CandidateTransaction
func (c *CandidateTransaction) String() string {
	date := "unknown"
	if c.Date != nil {
		date = c.Date.Format(DateFormat)
	}
	return fmt.Sprintf("CandidateTransaction{Date: %s, Amount: %s, Description: %q}",
		date, c.Amount.String(), c.Description)
}

// MarshalJSON implements custom JSON marshaling for CandidateTransaction
func (c *CandidateTransaction) MarshalJSON() ([]byte, error) {
	type Alias CandidateTransaction
	var date string
	if c.Date != nil {
		date = c.Date.Format(DateFormat)
	}
	return json.Marshal(&struct {
		Amount string `json:"amount"`
		Date   string `json:"date,omitempty"`
		*Alias
	}{
		Amount: c.Amount.String(),
		Date:   date,
		Alias:  (*Alias)(c),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for CandidateTransaction
func (c *CandidateTransaction) UnmarshalJSON(data []byte) error {
	type Alias CandidateTransaction
	aux := &struct {
		Amount string `json:"amount"`
		Date   string `json:"date"`
		*Alias
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	c.Amount, err = decimal.NewFromString(aux.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount format: %w", err)
	}

	c.Date = ParseTransactionDate(aux.Date)

	return nil
}

// ExistingTransaction is a transaction already persisted for the user,
// read back from the transaction store. TransactionDate carries the
// stored text form; Date parses it defensively and memoizes the result.
type ExistingTransaction struct {
	TransactionID   string          `json:"transactionId"`
	ExternalID      string          `json:"externalId,omitempty"`
	UserID          string          `json:"userId,omitempty"`
	TransactionDate string          `json:"transactionDate"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	MerchantName    string          `json:"merchantName,omitempty"`

	dateOnce sync.Once
	date     *time.Time
}

// NewExistingTransaction creates a new ExistingTransaction instance
func NewExistingTransaction(transactionID, transactionDate string, amount decimal.Decimal, description, merchantName string) *ExistingTransaction {
	return &ExistingTransaction{
		TransactionID:   transactionID,
		TransactionDate: transactionDate,
		Amount:          amount,
		Description:     description,
		MerchantName:    merchantName,
	}
}

// Date returns the parsed calendar date, or nil when the stored text is
// missing or unparsable. Stores hand the same record pointers to every
// caller, so the memo must hold up under concurrent detection runs.
func (e *ExistingTransaction) Date() *time.Time {
	e.dateOnce.Do(func() {
		e.date = ParseTransactionDate(e.TransactionDate)
	})
	return e.date
}

// Validate performs basic validation on the ExistingTransaction
func (e *ExistingTransaction) Validate() error {
	if strings.TrimSpace(e.TransactionID) == "" {
		return fmt.Errorf("transaction ID cannot be empty")
	}

	if e.Amount.IsZero() {
		return fmt.Errorf("transaction amount cannot be zero")
	}

	return nil
}

// NormalizedDescription returns the description normalized for comparison
func (e *ExistingTransaction) NormalizedDescription() string {
	return NormalizeText(e.Description)
}

// String returns a string representation of the ExistingTransaction
func (e *ExistingTransaction) String() string {
	return fmt.Sprintf("ExistingTransaction{ID: %s, Date: %s, Amount: %s, Description: %q}",
		e.TransactionID, e.TransactionDate, e.Amount.String(), e.Description)
}

// MarshalJSON implements custom JSON marshaling for ExistingTransaction
func (e *ExistingTransaction) MarshalJSON() ([]byte, error) {
	type Alias ExistingTransaction
	return json.Marshal(&struct {
		Amount string `json:"amount"`
		*Alias
	}{
		Amount: e.Amount.String(),
		Alias:  (*Alias)(e),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for ExistingTransaction
func (e *ExistingTransaction) UnmarshalJSON(data []byte) error {
	type Alias ExistingTransaction
	aux := &struct {
		Amount string `json:"amount"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	e.Amount, err = decimal.NewFromString(aux.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount format: %w", err)
	}

	return nil
}

// ParseDecimalFromString parses a decimal amount from its string form
func ParseDecimalFromString(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, fmt.Errorf("amount cannot be empty")
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount format: %w", err)
	}

	return amount, nil
}

// CreateCandidateFromCSV builds a CandidateTransaction from raw CSV
// field values. An unparsable amount is an error; an unparsable date is
// not, the candidate simply carries a nil date.
func CreateCandidateFromCSV(dateStr, amountStr, description, merchantName, transactionID, externalID string) (*CandidateTransaction, error) {
	amount, err := ParseDecimalFromString(amountStr)
	if err != nil {
		return nil, err
	}

	candidate := NewCandidateTransaction(ParseTransactionDate(dateStr), amount, strings.TrimSpace(description), strings.TrimSpace(merchantName))
	candidate.TransactionID = strings.TrimSpace(transactionID)
	candidate.ExternalID = strings.TrimSpace(externalID)

	return candidate, nil
}
