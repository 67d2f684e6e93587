package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nsxbet/bq-inspector/pkg/config"
	"github.com/nsxbet/bq-inspector/pkg/engine"
	"github.com/nsxbet/bq-inspector/pkg/logger"
	"github.com/nsxbet/bq-inspector/pkg/types"
	"github.com/nsxbet/bq-inspector/pkg/warehouse"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] <sql-file>",
	Short: "Analyze a SQL file without contacting the warehouse",
	Long: `Inspect analyzes the SQL statements in a file offline: statement
structure, table and column dependencies, and heuristic advisory
checks. Pass "-" to read from stdin.

Inspection is purely lexical; authoritative syntax validation requires
a dry-run against the warehouse.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringP("output", "o", "text", "output format (text, json, yaml)")
	inspectCmd.Flags().Bool("fail-on-error", false, "exit with non-zero code if error-grade issues are found")
	inspectCmd.Flags().Bool("fail-on-warning", false, "exit with non-zero code if warnings are found")

	_ = viper.BindPFlag("output", inspectCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("fail-on-error", inspectCmd.Flags().Lookup("fail-on-error"))
	_ = viper.BindPFlag("fail-on-warning", inspectCmd.Flags().Lookup("fail-on-warning"))
}

// inspectReport is the combined offline analysis for one input.
type inspectReport struct {
	Structure    types.ParsedQuery           `json:"structure" yaml:"structure"`
	Dependencies engine.DependenciesResponse `json:"dependencies" yaml:"dependencies"`
	Validation   types.ValidationResult      `json:"validation" yaml:"validation"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	eng, err := newEngineFromFlags(nil)
	if err != nil {
		return err
	}

	sql, err := readSQLArg(args[0])
	if err != nil {
		return err
	}

	report := inspectReport{
		Structure:    eng.AnalyzeQueryStructure(sql),
		Dependencies: eng.ExtractDependencies(sql),
		Validation:   eng.ValidateQuerySyntax(sql),
	}

	if err := outputReport(report, viper.GetString("output")); err != nil {
		return err
	}

	hasErrors := false
	hasWarnings := false
	for _, issue := range report.Validation.Issues {
		switch issue.Severity {
		case types.Severity_ERROR:
			hasErrors = true
		case types.Severity_WARNING:
			hasWarnings = true
		}
	}
	if hasErrors && viper.GetBool("fail-on-error") {
		os.Exit(1)
	}
	if hasWarnings && viper.GetBool("fail-on-warning") {
		os.Exit(1)
	}
	return nil
}

// newEngineFromFlags builds the resolved config, logger and engine.
// runner is nil for offline commands.
func newEngineFromFlags(runner warehouse.DryRunner) (*engine.Engine, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return nil, err
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if viper.GetBool("debug") {
		level = logger.ParseLevel("DEBUG")
	} else if viper.GetBool("verbose") {
		level = logger.ParseLevel("INFO")
	}
	log := logger.NewWithLevel(level)

	return engine.New(cfg, runner, log), nil
}

func readSQLArg(arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", errors.Wrap(err, "failed to read SQL from stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read SQL file: %s", arg)
	}
	return string(data), nil
}

func outputReport(report inspectReport, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		defer encoder.Close()
		return encoder.Encode(report)
	case "text":
		return outputText(report)
	default:
		return errors.Errorf("unsupported output format: %s", format)
	}
}

func outputText(report inspectReport) error {
	fmt.Printf("Statement type: %s\n", report.Structure.StatementType)
	fmt.Printf("Complexity score: %d\n", report.Structure.ComplexityScore)

	if len(report.Dependencies.Tables) > 0 {
		fmt.Printf("Tables (%d):\n", report.Dependencies.TableCount)
		for _, t := range report.Dependencies.Tables {
			fmt.Printf("  %s\n", t.FullName)
		}
	}
	if len(report.Dependencies.Columns) > 0 {
		fmt.Printf("Columns (%d):\n", report.Dependencies.ColumnCount)
		for _, c := range report.Dependencies.Columns {
			fmt.Printf("  %s\n", c)
		}
	}

	if len(report.Validation.Issues) == 0 {
		fmt.Println("No issues found.")
		return nil
	}

	errorCount := 0
	warningCount := 0
	for _, issue := range report.Validation.Issues {
		var label string
		switch issue.Severity {
		case types.Severity_ERROR:
			label = color.RedString("ERROR")
			errorCount++
		case types.Severity_WARNING:
			label = color.YellowString("WARNING")
			warningCount++
		default:
			label = color.CyanString("INFO")
		}
		fmt.Printf("[%s] %s: %s\n", label, issue.Type, issue.Message)
	}
	if len(report.Validation.Suggestions) > 0 {
		fmt.Println("\nSuggestions:")
		for _, s := range report.Validation.Suggestions {
			fmt.Printf("  %s\n", s.Text)
		}
	}
	fmt.Printf("\nSummary: %d error(s), %d warning(s)\n", errorCount, warningCount)
	return nil
}
