// Command seqengine is the operator tool for working with integration
// sequence configurations: parse pasted curl commands, validate sequence
// files, preview field transformations and scaffold starter sequences.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sequence-engine/internal/common/logging"
	"sequence-engine/internal/curl"
	"sequence-engine/internal/mapping"
	"sequence-engine/internal/sequence"
)

var logLevel string

func main() {
	// .env is optional; environment variables win
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "seqengine",
		Short: "Integration sequence configuration tool",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevel != "" {
				os.Setenv("LOG_LEVEL", logLevel)
			}
			logging.InitGlobalLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.MustSync()
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newParseCurlCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newPreviewCmd())
	root.AddCommand(newScaffoldCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newParseCurlCmd() *cobra.Command {
	var render bool

	cmd := &cobra.Command{
		Use:   "parse-curl [file]",
		Short: "Parse a curl command into a request descriptor",
		Long: "Reads curl command text from the given file, or from stdin when no\n" +
			"file is given, and prints the recovered request as JSON.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args)
			if err != nil {
				return err
			}

			d := curl.Parse(string(text))
			if render {
				fmt.Fprintln(cmd.OutOrStdout(), d.Render())
				return nil
			}
			return printJSON(cmd, d)
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "print the canonical curl command instead of JSON")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a sequence definition",
		Long: "Reads a sequence definition as JSON from the given file, or from\n" +
			"stdin, and prints the validation verdict. Exits non-zero when the\n" +
			"sequence has violations.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}

			var seq sequence.Sequence
			if err := json.Unmarshal(data, &seq); err != nil {
				return fmt.Errorf("failed to decode sequence: %w", err)
			}

			verdict := sequence.Validate(&seq)
			if err := printJSON(cmd, verdict); err != nil {
				return err
			}
			if !verdict.Valid {
				cmd.SilenceUsage = true
				return fmt.Errorf("sequence has %d violation(s)", len(verdict.Violations))
			}
			return nil
		},
	}
}

func newPreviewCmd() *cobra.Command {
	var mappingsPath string

	cmd := &cobra.Command{
		Use:   "preview [record-file]",
		Short: "Preview field transformations against a sample record",
		Long: "Reads a JSON record from the given file, or from stdin, applies the\n" +
			"field mappings from --mappings and prints the transformed output with\n" +
			"diagnostics.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}

			var record map[string]interface{}
			if err := json.Unmarshal(data, &record); err != nil {
				return fmt.Errorf("failed to decode record: %w", err)
			}

			var mappings []mapping.FieldMapping
			if mappingsPath != "" {
				raw, err := os.ReadFile(mappingsPath)
				if err != nil {
					return fmt.Errorf("failed to read mappings: %w", err)
				}
				if err := json.Unmarshal(raw, &mappings); err != nil {
					return fmt.Errorf("failed to decode mappings: %w", err)
				}
			} else {
				mappings = mapping.SuggestMappings(record)
			}

			return printJSON(cmd, mapping.Apply(record, mappings))
		},
	}
	cmd.Flags().StringVarP(&mappingsPath, "mappings", "m", "", "field mappings JSON file (default: suggest identity mappings)")
	return cmd
}

func newScaffoldCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scaffold [sequence-type]",
		Short: "Print a starter sequence of the given type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sequenceType := ""
			if len(args) == 1 {
				sequenceType = args[0]
			}
			return printJSON(cmd, sequence.SampleSequence(sequenceType))
		},
	}
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return data, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return data, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
