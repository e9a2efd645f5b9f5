// Package store supplies existing-transaction data to the detection
// engine and parses candidate batches from CSV exports.
//
// The CSV layer tolerates the variations found in real exports:
// configurable column names, optional headers, empty rows, and
// per-record failures that are collected as statistics instead of
// aborting the whole file.
package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aksumit1/BudgetBuddy-backend-sub006/pkg/errors"
	"github.com/aksumit1/BudgetBuddy-backend-sub006/pkg/logger"
)

// ParseError records a failure on a single CSV record.
type ParseError struct {
	Line    int
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error at line %d (%s=%q): %s: %v", e.Line, e.Field, e.Value, e.Message, e.Err)
	}
	return fmt.Sprintf("parse error at line %d (%s=%q): %s", e.Line, e.Field, e.Value, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseConfig holds configuration shared by the CSV parsers
type ParseConfig struct {
	HasHeader        bool `json:"has_header"`
	Delimiter        rune `json:"-"`
	TrimLeadingSpace bool `json:"trim_leading_space"`
	SkipEmptyRows    bool `json:"skip_empty_rows"`
}

// DefaultParseConfig returns a configuration with sensible defaults
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		HasHeader:        true,
		Delimiter:        ',',
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
	}
}

// baseParser provides the CSV plumbing shared by the existing and
// candidate parsers.
type baseParser struct {
	config *ParseConfig
	logger logger.Logger

	lineNumber int
	headerMap  map[string]int
}

func newBaseParser(config *ParseConfig, component string) *baseParser {
	if config == nil {
		config = DefaultParseConfig()
	}
	return &baseParser{
		config:    config,
		logger:    logger.GetGlobalLogger().WithComponent(component),
		headerMap: make(map[string]int),
	}
}

// openFile opens a CSV file and returns a configured reader
func (bp *baseParser) openFile(filePath string) (*os.File, *csv.Reader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		bp.logger.WithError(err).WithField("file_path", filePath).Error("Failed to open CSV file")
		if os.IsNotExist(err) {
			return nil, nil, errors.FileError(errors.CodeFileNotFound, filePath, err)
		}
		if os.IsPermission(err) {
			return nil, nil, errors.FileError(errors.CodeFilePermission, filePath, err)
		}
		return nil, nil, errors.FileError(errors.CodeFileCorrupted, filePath, err)
	}

	reader := csv.NewReader(file)
	reader.Comma = bp.config.Delimiter
	reader.TrimLeadingSpace = bp.config.TrimLeadingSpace
	reader.FieldsPerRecord = -1

	return file, reader, nil
}

// readHeaders consumes the header row and validates that the required
// columns are present. With HasHeader disabled, defaultHeaders supplies
// the column order.
func (bp *baseParser) readHeaders(reader *csv.Reader, filePath string, required, defaultHeaders []string) error {
	bp.headerMap = make(map[string]int)
	bp.lineNumber = 0

	if !bp.config.HasHeader {
		for i, header := range defaultHeaders {
			bp.headerMap[strings.ToLower(header)] = i
		}
		return nil
	}

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return errors.ValidationError(errors.CodeMissingField, "file_content", "empty", nil).
				WithSuggestion("Ensure the file contains header and data rows").
				WithContext("file", filePath)
		}
		return errors.ParseError(errors.CodeInvalidFormat, filePath, 1, "headers", "", err)
	}

	bp.lineNumber++
	for i, header := range headers {
		bp.headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}

	var missing []string
	for _, column := range required {
		if _, ok := bp.headerMap[strings.ToLower(column)]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return errors.ParseError(errors.CodeMissingColumn, filePath, bp.lineNumber, "headers",
			strings.Join(missing, ", "), nil).
			WithSuggestion(fmt.Sprintf("Ensure the CSV file contains these columns: %s", strings.Join(missing, ", ")))
	}

	return nil
}

// readRecord returns the next non-empty record, or io.EOF at the end of
// the file.
func (bp *baseParser) readRecord(reader *csv.Reader) ([]string, error) {
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				return nil, err
			}
			bp.lineNumber++
			return nil, err
		}

		bp.lineNumber++

		if bp.config.SkipEmptyRows && isEmptyRecord(record) {
			continue
		}

		return record, nil
	}
}

// fieldValue retrieves a column value by name, returning the empty
// string when the column is absent or the record is short.
func (bp *baseParser) fieldValue(record []string, column string) string {
	index, ok := bp.headerMap[strings.ToLower(column)]
	if !ok || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// ParseStats summarizes a parsing run over one file.
type ParseStats struct {
	TotalLines    int           `json:"total_lines"`
	RecordsParsed int           `json:"records_parsed"`
	RecordsValid  int           `json:"records_valid"`
	ErrorCount    int           `json:"error_count"`
	Errors        []*ParseError `json:"-"`
}

// NewParseStats creates an empty ParseStats instance
func NewParseStats() *ParseStats {
	return &ParseStats{Errors: make([]*ParseError, 0)}
}

// AddError records a per-record failure
func (ps *ParseStats) AddError(err *ParseError) {
	ps.Errors = append(ps.Errors, err)
	ps.ErrorCount++
}

// HasErrors returns true if any record failed to parse
func (ps *ParseStats) HasErrors() bool {
	return ps.ErrorCount > 0
}

// String returns a human-readable summary of the parsing run
func (ps *ParseStats) String() string {
	return fmt.Sprintf("Parsed %d lines, %d records (%d valid), %d errors",
		ps.TotalLines, ps.RecordsParsed, ps.RecordsValid, ps.ErrorCount)
}

// SampleErrors returns up to maxSamples error messages for logging
func (ps *ParseStats) SampleErrors(maxSamples int) []string {
	if len(ps.Errors) == 0 {
		return nil
	}

	limit := len(ps.Errors)
	if maxSamples > 0 && maxSamples < limit {
		limit = maxSamples
	}

	samples := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		samples = append(samples, ps.Errors[i].Error())
	}
	return samples
}
