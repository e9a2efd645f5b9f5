package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aksumit1/BudgetBuddy-backend-sub006/cmd/dedup/config"
	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/detector"
	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/reporter"
	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/store"
	"github.com/aksumit1/BudgetBuddy-backend-sub006/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the detect command
var (
	userID            string
	candidatesFile    string
	existingFile      string
	outputFormat      string
	outputFile        string
	profile           string
	threshold         float64
	windowMargin      int
	noHeader          bool
	includeImportable bool
)

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect duplicate transactions in an import batch",
	Long: `Detect compares a batch of candidate transactions against a user's
existing transactions and classifies each candidate as importable,
a certain duplicate to skip, or a probable duplicate to review.

This command requires:
- A candidate transaction file (CSV format)
- An existing transaction file (CSV format)
- The user the batch belongs to

Examples:
  # Basic detection
  dedup detect --user user-1 --candidates-file batch.csv --existing-file ledger.csv

  # JSON report written to a file
  dedup detect --user user-1 --candidates-file batch.csv --existing-file ledger.csv \
    --output-format json --output-file report.json

  # Stricter matching
  dedup detect --user user-1 --candidates-file batch.csv --existing-file ledger.csv \
    --profile strict

  # Custom threshold on the default profile
  dedup detect --user user-1 --candidates-file batch.csv --existing-file ledger.csv \
    --threshold 0.8 --include-importable`,

	PreRunE: validateDetectFlags,
	RunE:    runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	// Required flags
	detectCmd.Flags().StringVarP(&userID, "user", "u", "", "user the candidate batch belongs to (required)")
	detectCmd.Flags().StringVarP(&candidatesFile, "candidates-file", "c", "", "path to candidate transaction CSV file (required)")
	detectCmd.Flags().StringVarP(&existingFile, "existing-file", "e", "", "path to existing transaction CSV file (required)")

	// Output flags
	detectCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	detectCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	detectCmd.Flags().BoolVar(&includeImportable, "include-importable", false, "list importable candidates in the report")

	// Matching configuration flags
	detectCmd.Flags().StringVarP(&profile, "profile", "p", "default", "detection profile: default, strict, relaxed")
	detectCmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "similarity threshold override (0.0-1.0)")
	detectCmd.Flags().IntVar(&windowMargin, "window-margin", 0, "query window margin override in days")

	// Input flags
	detectCmd.Flags().BoolVar(&noHeader, "no-header", false, "input files have no header row")

	// Mark required flags
	detectCmd.MarkFlagRequired("user")
	detectCmd.MarkFlagRequired("candidates-file")
	detectCmd.MarkFlagRequired("existing-file")

	// Bind flags to viper
	viper.BindPFlag("user", detectCmd.Flags().Lookup("user"))
	viper.BindPFlag("candidates-file", detectCmd.Flags().Lookup("candidates-file"))
	viper.BindPFlag("existing-file", detectCmd.Flags().Lookup("existing-file"))
	viper.BindPFlag("output-format", detectCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", detectCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("include-importable", detectCmd.Flags().Lookup("include-importable"))
	viper.BindPFlag("profile", detectCmd.Flags().Lookup("profile"))
	viper.BindPFlag("threshold", detectCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("window-margin", detectCmd.Flags().Lookup("window-margin"))
	viper.BindPFlag("no-header", detectCmd.Flags().Lookup("no-header"))
}

func validateDetectFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	userID = viper.GetString("user")
	candidatesFile = viper.GetString("candidates-file")
	existingFile = viper.GetString("existing-file")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	includeImportable = viper.GetBool("include-importable")
	profile = viper.GetString("profile")
	threshold = viper.GetFloat64("threshold")
	windowMargin = viper.GetInt("window-margin")
	noHeader = viper.GetBool("no-header")

	// Validate required flags
	if userID == "" {
		return fmt.Errorf("user is required")
	}
	if candidatesFile == "" {
		return fmt.Errorf("candidates-file is required")
	}
	if existingFile == "" {
		return fmt.Errorf("existing-file is required")
	}

	// Validate file existence
	if err := validateFileExists(candidatesFile, "candidate transaction file"); err != nil {
		return err
	}
	if err := validateFileExists(existingFile, "existing transaction file"); err != nil {
		return err
	}

	// Validate output format
	if !reporter.OutputFormat(outputFormat).IsValid() {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	// Validate matching overrides
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("threshold must be between 0.0 and 1.0")
	}
	if windowMargin < 0 {
		return fmt.Errorf("window margin cannot be negative")
	}

	// Validate output file directory exists if specified
	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	verbose = viper.GetBool("verbose")

	log, err := logger.NewLogger(config.CreateLoggerConfig(verbose))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger.SetGlobalLogger(log)

	if verbose {
		fmt.Fprintf(os.Stderr, "Starting duplicate detection...\n")
		fmt.Fprintf(os.Stderr, "User: %s\n", userID)
		fmt.Fprintf(os.Stderr, "Candidates file: %s\n", candidatesFile)
		fmt.Fprintf(os.Stderr, "Existing file: %s\n", existingFile)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
		if outputFile != "" {
			fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
		}
	}

	// Create configurations
	detectorConfig, err := config.CreateDetectorConfig(profile, threshold, windowMargin)
	if err != nil {
		return fmt.Errorf("failed to create detector config: %w", err)
	}

	candidateConfig := config.CreateCandidateParserConfig(!noHeader)
	existingConfig := config.CreateExistingParserConfig(!noHeader)

	// Parse the candidate batch
	candidateParser := store.NewCandidateParser(candidateConfig)
	candidates, candidateStats, err := candidateParser.ParseFile(candidatesFile)
	if err != nil {
		return fmt.Errorf("failed to parse candidate file: %w", err)
	}
	reportParseStats(candidateStats, "candidate", verbose)

	// Load the existing transactions
	csvStore, existingStats, err := store.NewCSVStore(existingFile, existingConfig)
	if err != nil {
		return fmt.Errorf("failed to load existing transactions: %w", err)
	}
	reportParseStats(existingStats, "existing", verbose)

	// Run detection
	engine, err := detector.NewEngine(csvStore, detectorConfig)
	if err != nil {
		return fmt.Errorf("failed to create detection engine: %w", err)
	}

	results, err := engine.Detect(ctx, userID, candidates)
	if err != nil {
		return err
	}

	// Generate report
	report := reporter.BuildReport(userID, candidates, results)
	reportGenerator, err := reporter.NewReportGenerator(config.CreateReportConfig(outputFormat, includeImportable))
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	// Determine output destination
	var output *os.File
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	if err := reportGenerator.GenerateReport(report, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	// Show completion message
	if verbose {
		fmt.Fprintf(os.Stderr, "\nDuplicate detection completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Checked %d candidates against %d existing transactions.\n",
			len(candidates), csvStore.Count(userID))
		fmt.Fprintf(os.Stderr, "Importable: %d, skipped: %d, needs review: %d.\n",
			report.Summary.Importable, report.Summary.Skipped, report.Summary.NeedsReview)
	}

	return nil
}

// reportParseStats surfaces per-record parse failures without aborting
// the run. Bad rows are dropped; the report covers what parsed.
func reportParseStats(stats *store.ParseStats, label string, verbose bool) {
	if stats == nil || !stats.HasErrors() {
		return
	}

	fmt.Fprintf(os.Stderr, "Warning: %d %s record(s) could not be parsed and were skipped.\n",
		stats.ErrorCount, label)

	if verbose {
		for _, msg := range stats.SampleErrors(5) {
			fmt.Fprintf(os.Stderr, "  %s\n", msg)
		}
	}
}
