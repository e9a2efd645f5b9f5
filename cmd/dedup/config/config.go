// Package config translates CLI flags into component configurations.
package config

import (
	"fmt"

	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/detector"
	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/reporter"
	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/store"
	"github.com/aksumit1/BudgetBuddy-backend-sub006/pkg/logger"
)

// Detection profiles selectable from the CLI.
const (
	ProfileDefault = "default"
	ProfileStrict  = "strict"
	ProfileRelaxed = "relaxed"
)

// CreateDetectorConfig builds a detector configuration from the CLI
// profile and overrides. A zero threshold or margin keeps the profile's
// value.
func CreateDetectorConfig(profile string, threshold float64, marginDays int) (*detector.DetectorConfig, error) {
	var config *detector.DetectorConfig

	switch profile {
	case "", ProfileDefault:
		config = detector.DefaultDetectorConfig()
	case ProfileStrict:
		config = detector.StrictDetectorConfig()
	case ProfileRelaxed:
		config = detector.RelaxedDetectorConfig()
	default:
		return nil, fmt.Errorf("unknown detection profile '%s'. Valid profiles: default, strict, relaxed", profile)
	}

	if threshold > 0 {
		config.SimilarityThreshold = threshold
	}
	if marginDays > 0 {
		config.WindowMarginDays = marginDays
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// CreateExistingParserConfig builds the existing-transaction parser
// configuration
func CreateExistingParserConfig(hasHeader bool) *store.ExistingParserConfig {
	config := store.DefaultExistingParserConfig()
	config.HasHeader = hasHeader
	return config
}

// CreateCandidateParserConfig builds the candidate parser configuration
func CreateCandidateParserConfig(hasHeader bool) *store.CandidateParserConfig {
	config := store.DefaultCandidateParserConfig()
	config.HasHeader = hasHeader
	return config
}

// CreateReportConfig builds the report configuration for the requested
// output format
func CreateReportConfig(format string, includeImportable bool) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()
	config.Format = reporter.OutputFormat(format)
	config.IncludeImportable = includeImportable
	return config
}

// CreateLoggerConfig builds the logger configuration from CLI flags
func CreateLoggerConfig(verbose bool) *logger.Config {
	if verbose {
		return logger.DebugConfig()
	}

	config := logger.DefaultConfig()
	config.Level = logger.WarnLevel
	return config
}
