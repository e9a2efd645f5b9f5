// Package reporter renders duplicate-detection results for human
// review and downstream tooling.
//
// Supported output formats:
//   - Console: readable summary plus per-candidate review sections
//   - JSON: structured output for programmatic consumption
//   - CSV: one row per candidate/match pair for spreadsheets
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/detector"
	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/models"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// IncludeImportable lists candidates with no duplicate signal,
	// which is noisy for large clean batches
	IncludeImportable bool `json:"include_importable"`

	// MaxMatchesPerCandidate caps how many matches are shown per
	// candidate; zero means no cap
	MaxMatchesPerCandidate int `json:"max_matches_per_candidate"`

	CSVDelimiter rune `json:"-"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:                 FormatConsole,
		IncludeImportable:      false,
		MaxMatchesPerCandidate: 5,
		CSVDelimiter:           ',',
		CSVHeaders:             true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.MaxMatchesPerCandidate < 0 {
		return fmt.Errorf("max matches per candidate cannot be negative: %d", c.MaxMatchesPerCandidate)
	}
	return nil
}

// ReportEntry is the report view of one batch candidate.
type ReportEntry struct {
	Index          int                          `json:"index"`
	Candidate      *models.CandidateTransaction `json:"candidate"`
	Classification string                       `json:"classification"`
	Matches        []detector.MatchCandidate    `json:"matches,omitempty"`
}

// ReportSummary holds batch-level counts.
type ReportSummary struct {
	TotalCandidates int `json:"total_candidates"`
	Importable      int `json:"importable"`
	Skipped         int `json:"skipped"`
	NeedsReview     int `json:"needs_review"`
	TotalMatches    int `json:"total_matches"`
}

// DetectionReport aggregates one detection run for rendering.
type DetectionReport struct {
	UserID      string         `json:"user_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Summary     *ReportSummary `json:"summary"`
	Entries     []*ReportEntry `json:"entries"`
}

// BuildReport assembles a report from a candidate batch and its
// detection results, preserving batch order.
func BuildReport(userID string, candidates []*models.CandidateTransaction, results detector.ResultSet) *DetectionReport {
	summary := &ReportSummary{TotalCandidates: len(candidates)}
	entries := make([]*ReportEntry, 0, len(candidates))

	for i, candidate := range candidates {
		classification := results.Classify(i)
		entry := &ReportEntry{
			Index:          i,
			Candidate:      candidate,
			Classification: classification.String(),
		}

		switch classification {
		case detector.ClassificationNoMatch:
			summary.Importable++
		case detector.ClassificationSkip:
			summary.Skipped++
		case detector.ClassificationMatches:
			summary.NeedsReview++
			entry.Matches = results[i].Matches
			summary.TotalMatches += len(entry.Matches)
		}

		entries = append(entries, entry)
	}

	return &DetectionReport{
		UserID:      userID,
		GeneratedAt: time.Now(),
		Summary:     summary,
		Entries:     entries,
	}
}

// ReportGenerator renders detection reports in the configured format.
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a report generator with the specified
// configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	return &ReportGenerator{config: config}, nil
}

// GenerateReport renders the report to the provided writer
func (rg *ReportGenerator) GenerateReport(report *DetectionReport, writer io.Writer) error {
	if report == nil {
		return fmt.Errorf("detection report cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(report, writer)
	case FormatJSON:
		return rg.generateJSONReport(report, writer)
	case FormatCSV:
		return rg.generateCSVReport(report, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) generateConsoleReport(report *DetectionReport, writer io.Writer) error {
	fmt.Fprintf(writer, "DUPLICATE DETECTION REPORT\n")
	fmt.Fprintf(writer, "User: %s\n", report.UserID)
	fmt.Fprintf(writer, "Generated: %s\n\n", report.GeneratedAt.Format(time.RFC3339))

	summary := report.Summary
	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	fmt.Fprintf(writer, "Candidates:   %d\n", summary.TotalCandidates)
	fmt.Fprintf(writer, "Importable:   %d (%.1f%%)\n",
		summary.Importable, percentage(summary.Importable, summary.TotalCandidates))
	fmt.Fprintf(writer, "Skipped:      %d (%.1f%%)\n",
		summary.Skipped, percentage(summary.Skipped, summary.TotalCandidates))
	fmt.Fprintf(writer, "Needs Review: %d (%.1f%%)\n\n",
		summary.NeedsReview, percentage(summary.NeedsReview, summary.TotalCandidates))

	if summary.Skipped > 0 {
		fmt.Fprintf(writer, "=== SKIPPED (certain duplicates) ===\n")
		for _, entry := range report.Entries {
			if entry.Classification != detector.ClassificationSkip.String() {
				continue
			}
			fmt.Fprintf(writer, "  %d. %s\n", entry.Index+1, describeCandidate(entry.Candidate))
		}
		fmt.Fprintf(writer, "\n")
	}

	if summary.NeedsReview > 0 {
		fmt.Fprintf(writer, "=== NEEDS REVIEW (possible duplicates) ===\n")
		for _, entry := range report.Entries {
			if entry.Classification != detector.ClassificationMatches.String() {
				continue
			}

			fmt.Fprintf(writer, "  %d. %s\n", entry.Index+1, describeCandidate(entry.Candidate))
			for i, match := range entry.Matches {
				if rg.config.MaxMatchesPerCandidate > 0 && i >= rg.config.MaxMatchesPerCandidate {
					fmt.Fprintf(writer, "     ... and %d more\n", len(entry.Matches)-i)
					break
				}
				fmt.Fprintf(writer, "     - score %.2f vs %s on %s, %s (%s)\n",
					match.Score,
					match.Existing.Amount.StringFixed(2),
					match.Existing.TransactionDate,
					match.Existing.Description,
					detector.FormatReasons(match.Reasons))
			}
		}
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeImportable && summary.Importable > 0 {
		fmt.Fprintf(writer, "=== IMPORTABLE ===\n")
		for _, entry := range report.Entries {
			if entry.Classification != detector.ClassificationNoMatch.String() {
				continue
			}
			fmt.Fprintf(writer, "  %d. %s\n", entry.Index+1, describeCandidate(entry.Candidate))
		}
	}

	return nil
}

func (rg *ReportGenerator) generateJSONReport(report *DetectionReport, writer io.Writer) error {
	out := *report
	if !rg.config.IncludeImportable {
		filtered := make([]*ReportEntry, 0, len(report.Entries))
		for _, entry := range report.Entries {
			if entry.Classification == detector.ClassificationNoMatch.String() {
				continue
			}
			filtered = append(filtered, entry)
		}
		out.Entries = filtered
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(&out)
}

func (rg *ReportGenerator) generateCSVReport(report *DetectionReport, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		headers := []string{
			"Index",
			"Classification",
			"Candidate_Date",
			"Candidate_Amount",
			"Candidate_Description",
			"Match_Transaction_ID",
			"Match_Date",
			"Match_Amount",
			"Score",
			"Reasons",
		}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, entry := range report.Entries {
		if entry.Classification == detector.ClassificationNoMatch.String() && !rg.config.IncludeImportable {
			continue
		}
		if entry.Candidate == nil {
			continue
		}

		base := []string{
			fmt.Sprintf("%d", entry.Index),
			entry.Classification,
			candidateDate(entry.Candidate),
			entry.Candidate.Amount.StringFixed(2),
			entry.Candidate.Description,
		}

		if len(entry.Matches) == 0 {
			record := append(base, "", "", "", "", "")
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
			continue
		}

		for _, match := range entry.Matches {
			record := append(append([]string{}, base...),
				match.Existing.TransactionID,
				match.Existing.TransactionDate,
				match.Existing.Amount.StringFixed(2),
				fmt.Sprintf("%.2f", match.Score),
				detector.FormatReasons(match.Reasons),
			)
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	return nil
}

func describeCandidate(candidate *models.CandidateTransaction) string {
	if candidate == nil {
		return "(missing candidate)"
	}
	return fmt.Sprintf("%s %s %q", candidateDate(candidate), candidate.Amount.StringFixed(2), candidate.Description)
}

func candidateDate(candidate *models.CandidateTransaction) string {
	if candidate == nil || candidate.Date == nil {
		return ""
	}
	return candidate.Date.Format(models.DateFormat)
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(part) / float64(total) * 100.0
}
