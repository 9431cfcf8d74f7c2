package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/eloiseboudon/crossfit-audit/internal/intake"
)

var validateFormat string

var validateCmd = &cobra.Command{
	Use:   "validate <file.json|file.yaml|->",
	Short: "Check a gym document for missing or malformed fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(validateFormat, "text", "json"); err != nil {
			return err
		}

		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		raw, err := intake.ParseDocument(data)
		if err != nil {
			return err
		}

		rep := intake.Check(raw)
		if validateFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				return eris.Wrap(err, "encode report")
			}
		} else {
			writeValidation(os.Stdout, rep)
		}

		if !rep.IsValid {
			return eris.New("document is not valid")
		}
		return nil
	},
}

func writeValidation(w io.Writer, rep intake.Report) {
	status := "valid"
	if !rep.IsValid {
		status = "invalid"
	}
	fmt.Fprintf(w, "Status:       %s\n", status)
	fmt.Fprintf(w, "Completeness: %.1f%%\n", rep.DataCompleteness)
	if len(rep.MissingRequired) > 0 {
		fmt.Fprintf(w, "Missing required: %s\n", strings.Join(rep.MissingRequired, ", "))
	}
	if len(rep.MissingOptional) > 0 {
		fmt.Fprintf(w, "Missing optional: %s\n", strings.Join(rep.MissingOptional, ", "))
	}
	for _, e := range rep.SchemaErrors {
		fmt.Fprintf(w, "Schema: %s\n", e)
	}
	fmt.Fprintln(w, rep.Recommendation)
}

func init() {
	validateCmd.Flags().StringVar(&validateFormat, "format", "text", "output format: text or json")
	rootCmd.AddCommand(validateCmd)
}
