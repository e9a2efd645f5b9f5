package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/detector"
	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/models"
)

func testCandidates() []*models.CandidateTransaction {
	coffee := models.NewCandidateTransaction(
		models.ParseTransactionDate("2024-03-01"), decimal.NewFromFloat(-42.50), "coffee shop", "")
	netflix := models.NewCandidateTransaction(
		models.ParseTransactionDate("2024-03-02"), decimal.NewFromFloat(-15.99), "Netflix", "")
	salary := models.NewCandidateTransaction(
		models.ParseTransactionDate("2024-03-03"), decimal.NewFromFloat(2500.00), "Salary", "")
	return []*models.CandidateTransaction{coffee, netflix, salary}
}

func testResults() detector.ResultSet {
	existing := models.NewExistingTransaction(
		"txn-9", "2024-03-01", decimal.NewFromFloat(-42.50), "coffee shop", "")

	return detector.ResultSet{
		0: {
			Classification: detector.ClassificationMatches,
			Matches: []detector.MatchCandidate{
				{Existing: existing, Score: 0.95, Reasons: []string{"same amount", "same date", "same description"}},
			},
		},
		1: {
			Classification: detector.ClassificationSkip,
			Matches:        []detector.MatchCandidate{},
		},
	}
}

func TestBuildReport(t *testing.T) {
	report := BuildReport("user-1", testCandidates(), testResults())

	if report.UserID != "user-1" {
		t.Errorf("expected user-1, got %q", report.UserID)
	}
	if len(report.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(report.Entries))
	}

	summary := report.Summary
	if summary.TotalCandidates != 3 {
		t.Errorf("expected 3 candidates, got %d", summary.TotalCandidates)
	}
	if summary.NeedsReview != 1 {
		t.Errorf("expected 1 needing review, got %d", summary.NeedsReview)
	}
	if summary.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", summary.Skipped)
	}
	if summary.Importable != 1 {
		t.Errorf("expected 1 importable, got %d", summary.Importable)
	}
	if summary.TotalMatches != 1 {
		t.Errorf("expected 1 total match, got %d", summary.TotalMatches)
	}

	if report.Entries[2].Classification != "no_match" {
		t.Errorf("expected no_match for the clean candidate, got %q", report.Entries[2].Classification)
	}
}

func TestGenerateConsoleReport(t *testing.T) {
	generator, err := NewReportGenerator(DefaultReportConfig())
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	report := BuildReport("user-1", testCandidates(), testResults())

	var buf bytes.Buffer
	if err := generator.GenerateReport(report, &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"DUPLICATE DETECTION REPORT",
		"Candidates:   3",
		"NEEDS REVIEW",
		"SKIPPED",
		"same amount, same date, same description",
		"0.95",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("console output missing %q:\n%s", want, output)
		}
	}

	// Clean candidates are excluded by default.
	if strings.Contains(output, "IMPORTABLE") {
		t.Error("importable section should be excluded by default")
	}
}

func TestGenerateConsoleReportIncludeImportable(t *testing.T) {
	config := DefaultReportConfig()
	config.IncludeImportable = true

	generator, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(BuildReport("user-1", testCandidates(), testResults()), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	if !strings.Contains(buf.String(), "IMPORTABLE") {
		t.Error("importable section missing when enabled")
	}
}

func TestGenerateJSONReport(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatJSON

	generator, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(BuildReport("user-1", testCandidates(), testResults()), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	var decoded DetectionReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSON output did not round-trip: %v", err)
	}

	if decoded.Summary.TotalCandidates != 3 {
		t.Errorf("expected 3 candidates in summary, got %d", decoded.Summary.TotalCandidates)
	}

	// Importable entries are filtered out of the JSON body by default.
	if len(decoded.Entries) != 2 {
		t.Errorf("expected 2 entries in JSON output, got %d", len(decoded.Entries))
	}
}

func TestGenerateCSVReport(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatCSV

	generator, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(BuildReport("user-1", testCandidates(), testResults()), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// Header, one match row, one skip row.
	if len(lines) != 3 {
		t.Fatalf("expected 3 CSV lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "Index,Classification") {
		t.Errorf("unexpected CSV header: %s", lines[0])
	}
	if !strings.Contains(buf.String(), "txn-9") {
		t.Error("CSV output missing matched transaction id")
	}
}

func TestReportConfigValidate(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = "xml"
	if err := config.Validate(); err == nil {
		t.Error("expected error for unsupported format")
	}

	config = DefaultReportConfig()
	config.MaxMatchesPerCandidate = -1
	if err := config.Validate(); err == nil {
		t.Error("expected error for negative match cap")
	}
}

func TestGenerateReportNil(t *testing.T) {
	generator, err := NewReportGenerator(nil)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}
	if err := generator.GenerateReport(nil, &bytes.Buffer{}); err == nil {
		t.Error("expected error for nil report")
	}
}
