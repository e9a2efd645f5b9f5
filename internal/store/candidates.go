package store

import (
	"io"

	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/models"
	"github.com/aksumit1/BudgetBuddy-backend-sub006/pkg/logger"
)

// CandidateParserConfig maps CSV columns to candidate fields.
type CandidateParserConfig struct {
	*ParseConfig

	TransactionIDColumn string `json:"transaction_id_column"`
	ExternalIDColumn    string `json:"external_id_column"`
	DateColumn          string `json:"date_column"`
	AmountColumn        string `json:"amount_column"`
	DescriptionColumn   string `json:"description_column"`
	MerchantColumn      string `json:"merchant_column"`
}

// DefaultCandidateParserConfig returns the column mapping used by the
// standard import format
func DefaultCandidateParserConfig() *CandidateParserConfig {
	return &CandidateParserConfig{
		ParseConfig:         DefaultParseConfig(),
		TransactionIDColumn: "transaction_id",
		ExternalIDColumn:    "external_id",
		DateColumn:          "date",
		AmountColumn:        "amount",
		DescriptionColumn:   "description",
		MerchantColumn:      "merchant_name",
	}
}

// CandidateParser reads candidate batches from CSV imports.
type CandidateParser struct {
	base   *baseParser
	config *CandidateParserConfig
}

// NewCandidateParser creates a parser for candidate imports
func NewCandidateParser(config *CandidateParserConfig) *CandidateParser {
	if config == nil {
		config = DefaultCandidateParserConfig()
	}
	if config.ParseConfig == nil {
		config.ParseConfig = DefaultParseConfig()
	}

	return &CandidateParser{
		base:   newBaseParser(config.ParseConfig, "candidate_parser"),
		config: config,
	}
}

// ParseFile reads a candidate batch from a CSV file, preserving record
// order since detection results are keyed by batch position.
func (p *CandidateParser) ParseFile(filePath string) ([]*models.CandidateTransaction, *ParseStats, error) {
	file, reader, err := p.base.openFile(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	required := []string{p.config.DateColumn, p.config.AmountColumn}
	defaults := []string{
		p.config.DateColumn,
		p.config.AmountColumn,
		p.config.DescriptionColumn,
		p.config.MerchantColumn,
		p.config.TransactionIDColumn,
		p.config.ExternalIDColumn,
	}
	if err := p.base.readHeaders(reader, filePath, required, defaults); err != nil {
		return nil, nil, err
	}

	stats := NewParseStats()
	var candidates []*models.CandidateTransaction

	for {
		record, err := p.base.readRecord(reader)
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.AddError(&ParseError{
				Line:    p.base.lineNumber,
				Field:   "record",
				Message: "malformed CSV record",
				Err:     err,
			})
			continue
		}

		stats.RecordsParsed++

		candidate, csvErr := models.CreateCandidateFromCSV(
			p.base.fieldValue(record, p.config.DateColumn),
			p.base.fieldValue(record, p.config.AmountColumn),
			p.base.fieldValue(record, p.config.DescriptionColumn),
			p.base.fieldValue(record, p.config.MerchantColumn),
			p.base.fieldValue(record, p.config.TransactionIDColumn),
			p.base.fieldValue(record, p.config.ExternalIDColumn),
		)
		if csvErr != nil {
			stats.AddError(&ParseError{
				Line:    p.base.lineNumber,
				Field:   p.config.AmountColumn,
				Value:   p.base.fieldValue(record, p.config.AmountColumn),
				Message: "invalid candidate record",
				Err:     csvErr,
			})
			continue
		}

		if err := candidate.Validate(); err != nil {
			stats.AddError(&ParseError{
				Line:    p.base.lineNumber,
				Field:   "record",
				Value:   candidate.String(),
				Message: "validation failed",
				Err:     err,
			})
			continue
		}

		stats.RecordsValid++
		candidates = append(candidates, candidate)
	}

	stats.TotalLines = p.base.lineNumber

	p.base.logger.WithFields(logger.Fields{
		"file_path": filePath,
		"stats":     stats.String(),
	}).Info("Parsed candidate batch")

	return candidates, stats, nil
}
