package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/clarablanes/rdkit/sdf"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.sdf>",
	Short: "Parse every record of an SD file and report failures",
	Long:  "Stream all records of an SD file, parsing each independently. Failures are reported with their record number and line; the exit status is non-zero when any record fails.",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	sup := sdf.NewSupplier(f, parseOptions())
	total, failed := 0, 0
	for {
		rec, err := sup.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		total++
		if rec.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL record %d (line %d): %v\n", rec.Index+1, rec.Line, rec.Err)
		}
	}

	fmt.Printf("%s: %d records, %d failed\n", args[0], total, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d records failed validation", failed, total)
	}
	return nil
}
