package models

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestParseTransactionDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *time.Time
	}{
		{
			name:     "ISO date",
			input:    "2024-01-15",
			expected: datePtr(2024, 1, 15),
		},
		{
			name:     "RFC3339 timestamp truncated to date",
			input:    "2024-01-15T10:30:00Z",
			expected: datePtr(2024, 1, 15),
		},
		{
			name:     "space-separated timestamp",
			input:    "2024-01-15 10:30:00",
			expected: datePtr(2024, 1, 15),
		},
		{
			name:     "US format",
			input:    "01/15/2024",
			expected: datePtr(2024, 1, 15),
		},
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "garbage",
			input:    "not-a-date",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseTransactionDate(tt.input)

			if tt.expected == nil {
				if result != nil {
					t.Errorf("Expected nil date, got %v", result)
				}
				return
			}

			if result == nil {
				t.Fatal("Expected a parsed date, got nil")
			}

			if !result.Equal(*tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  Netflix Subscription  ", "netflix subscription"},
		{"COFFEE SHOP", "coffee shop"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if result := NormalizeText(tt.input); result != tt.expected {
			t.Errorf("NormalizeText(%q): expected %q, got %q", tt.input, tt.expected, result)
		}
	}
}

func TestCandidateTransactionValidate(t *testing.T) {
	valid := NewCandidateTransaction(datePtr(2024, 3, 1), decimal.NewFromFloat(-42.50), "Coffee Shop", "")
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid candidate, got error: %v", err)
	}

	zeroAmount := NewCandidateTransaction(datePtr(2024, 3, 1), decimal.Zero, "Coffee Shop", "")
	if err := zeroAmount.Validate(); err == nil {
		t.Error("Expected error for zero amount")
	}

	empty := NewCandidateTransaction(nil, decimal.NewFromFloat(10), "  ", "")
	if err := empty.Validate(); err == nil {
		t.Error("Expected error for candidate with no date and no description")
	}
}

func TestExistingTransactionDate(t *testing.T) {
	ex := NewExistingTransaction("TXN-1", "2024-02-14", decimal.NewFromFloat(-15.99), "Netflix", "")

	d := ex.Date()
	if d == nil {
		t.Fatal("Expected parsed date")
	}
	if !d.Equal(*datePtr(2024, 2, 14)) {
		t.Errorf("Expected 2024-02-14, got %v", d)
	}

	// Memoized call returns the same result
	if ex.Date() != d {
		t.Error("Expected memoized date pointer to be stable")
	}

	bad := NewExistingTransaction("TXN-2", "14 Feb 2024", decimal.NewFromFloat(1), "x", "")
	if bad.Date() != nil {
		t.Error("Expected nil date for unparsable text")
	}
}

func TestExistingTransactionDateConcurrent(t *testing.T) {
	// Stores share record pointers across detection runs, so the first
	// Date call may happen on several goroutines at once.
	ex := NewExistingTransaction("TXN-1", "2024-02-14", decimal.NewFromFloat(-15.99), "Netflix", "")

	var wg sync.WaitGroup
	dates := make([]*time.Time, 8)
	for i := range dates {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dates[i] = ex.Date()
		}(i)
	}
	wg.Wait()

	for i, d := range dates {
		if d == nil {
			t.Fatalf("goroutine %d got nil date", i)
		}
		if d != dates[0] {
			t.Errorf("goroutine %d got a different date pointer", i)
		}
	}
}

func TestCandidateTransactionJSON(t *testing.T) {
	candidate := NewCandidateTransaction(datePtr(2024, 1, 15), decimal.NewFromFloat(-15.99), "Netflix", "Netflix Inc")
	candidate.TransactionID = "TXN-1"

	data, err := json.Marshal(candidate)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded CandidateTransaction
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !decoded.Amount.Equal(candidate.Amount) {
		t.Errorf("Expected amount %s, got %s", candidate.Amount, decoded.Amount)
	}

	if decoded.Date == nil || !decoded.Date.Equal(*candidate.Date) {
		t.Errorf("Expected date %v, got %v", candidate.Date, decoded.Date)
	}

	if decoded.TransactionID != "TXN-1" {
		t.Errorf("Expected transaction ID TXN-1, got %s", decoded.TransactionID)
	}
}

func TestExistingTransactionJSON(t *testing.T) {
	ex := NewExistingTransaction("TXN-9", "2024-03-01", decimal.NewFromFloat(-42.50), "Coffee Shop", "")

	data, err := json.Marshal(ex)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded ExistingTransaction
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !decoded.Amount.Equal(ex.Amount) {
		t.Errorf("Expected amount %s, got %s", ex.Amount, decoded.Amount)
	}

	if decoded.TransactionDate != "2024-03-01" {
		t.Errorf("Expected date text preserved, got %s", decoded.TransactionDate)
	}
}

func TestCreateCandidateFromCSV(t *testing.T) {
	candidate, err := CreateCandidateFromCSV("2024-01-15", "-15.99", " Netflix ", "Netflix Inc", "TXN-1", "plaid-abc")
	if err != nil {
		t.Fatalf("Expected candidate, got error: %v", err)
	}

	if candidate.Description != "Netflix" {
		t.Errorf("Expected trimmed description, got %q", candidate.Description)
	}

	if candidate.ExternalID != "plaid-abc" {
		t.Errorf("Expected external ID, got %q", candidate.ExternalID)
	}

	// Unparsable date degrades to nil, not an error
	noDate, err := CreateCandidateFromCSV("garbage", "10.00", "desc", "", "", "")
	if err != nil {
		t.Fatalf("Unparsable date should not error: %v", err)
	}
	if noDate.Date != nil {
		t.Error("Expected nil date for unparsable input")
	}

	// Unparsable amount is an error
	if _, err := CreateCandidateFromCSV("2024-01-15", "not-a-number", "desc", "", "", ""); err == nil {
		t.Error("Expected error for invalid amount")
	}
}
