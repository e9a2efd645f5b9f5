package store

import (
	"io"

	"github.com/google/uuid"

	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/models"
	"github.com/aksumit1/BudgetBuddy-backend-sub006/pkg/logger"
)

// ExistingParserConfig maps CSV columns to existing-transaction fields.
// Column lookups are case-insensitive.
type ExistingParserConfig struct {
	*ParseConfig

	UserIDColumn        string `json:"user_id_column"`
	TransactionIDColumn string `json:"transaction_id_column"`
	ExternalIDColumn    string `json:"external_id_column"`
	DateColumn          string `json:"date_column"`
	AmountColumn        string `json:"amount_column"`
	DescriptionColumn   string `json:"description_column"`
	MerchantColumn      string `json:"merchant_column"`
}

// DefaultExistingParserConfig returns the column mapping used by the
// standard export format
func DefaultExistingParserConfig() *ExistingParserConfig {
	return &ExistingParserConfig{
		ParseConfig:         DefaultParseConfig(),
		UserIDColumn:        "user_id",
		TransactionIDColumn: "transaction_id",
		ExternalIDColumn:    "external_id",
		DateColumn:          "date",
		AmountColumn:        "amount",
		DescriptionColumn:   "description",
		MerchantColumn:      "merchant_name",
	}
}

// ExistingParser reads persisted transactions from CSV exports.
type ExistingParser struct {
	base   *baseParser
	config *ExistingParserConfig
}

// NewExistingParser creates a parser for existing-transaction exports
func NewExistingParser(config *ExistingParserConfig) *ExistingParser {
	if config == nil {
		config = DefaultExistingParserConfig()
	}
	if config.ParseConfig == nil {
		config.ParseConfig = DefaultParseConfig()
	}

	return &ExistingParser{
		base:   newBaseParser(config.ParseConfig, "existing_parser"),
		config: config,
	}
}

// ParseFile reads all existing transactions from a CSV file. Records
// that fail to parse are collected in the returned stats; only file
// level failures abort the run.
func (p *ExistingParser) ParseFile(filePath string) ([]*models.ExistingTransaction, *ParseStats, error) {
	file, reader, err := p.base.openFile(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	required := []string{p.config.DateColumn, p.config.AmountColumn}
	defaults := []string{
		p.config.UserIDColumn,
		p.config.TransactionIDColumn,
		p.config.ExternalIDColumn,
		p.config.DateColumn,
		p.config.AmountColumn,
		p.config.DescriptionColumn,
		p.config.MerchantColumn,
	}
	if err := p.base.readHeaders(reader, filePath, required, defaults); err != nil {
		return nil, nil, err
	}

	stats := NewParseStats()
	var transactions []*models.ExistingTransaction

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

		transaction, parseErr := p.parseRecord(record)
		if parseErr != nil {
			stats.AddError(parseErr)
			continue
		}

		stats.RecordsValid++
		transactions = append(transactions, transaction)
	}

	stats.TotalLines = p.base.lineNumber

	p.base.logger.WithFields(logger.Fields{
		"file_path": filePath,
		"stats":     stats.String(),
	}).Info("Parsed existing transactions")

	if stats.HasErrors() {
		p.base.logger.WithField("samples", stats.SampleErrors(5)).Warn("Some existing transactions failed to parse")
	}

	return transactions, stats, nil
}

func (p *ExistingParser) parseRecord(record []string) (*models.ExistingTransaction, *ParseError) {
	amountStr := p.base.fieldValue(record, p.config.AmountColumn)
	amount, err := models.ParseDecimalFromString(amountStr)
	if err != nil {
		return nil, &ParseError{
			Line:    p.base.lineNumber,
			Field:   p.config.AmountColumn,
			Value:   amountStr,
			Message: "invalid amount",
			Err:     err,
		}
	}

	transactionID := p.base.fieldValue(record, p.config.TransactionIDColumn)
	if transactionID == "" {
		// Exports predating stable ids leave the column empty; assign a
		// fresh id so downstream identity checks have something to hold.
		transactionID = uuid.NewString()
	}

	transaction := models.NewExistingTransaction(
		transactionID,
		p.base.fieldValue(record, p.config.DateColumn),
		amount,
		p.base.fieldValue(record, p.config.DescriptionColumn),
		p.base.fieldValue(record, p.config.MerchantColumn),
	)
	transaction.UserID = p.base.fieldValue(record, p.config.UserIDColumn)
	transaction.ExternalID = p.base.fieldValue(record, p.config.ExternalIDColumn)

	if err := transaction.Validate(); err != nil {
		return nil, &ParseError{
			Line:    p.base.lineNumber,
			Field:   "record",
			Value:   transaction.String(),
			Message: "validation failed",
			Err:     err,
		}
	}

	return transaction, nil
}
