package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clarablanes/rdkit/sdf"
)

var indexCmd = &cobra.Command{
	Use:   "index <file.sdf>",
	Short: "Write a byte-offset sidecar index for an SD file",
	Long:  "Scan an SD file without parsing chemistry and write <file>.index, a sidecar mapping each record to its byte offset and start line for random access.",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().StringP("output", "o", "", "Index file path (default: <file>.index)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	src := args[0]
	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = src + ".index"
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	entries, err := sdf.BuildIndex(f)
	if err != nil {
		return err
	}

	w, err := os.Create(out)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := sdf.WriteIndex(w, entries); err != nil {
		return err
	}

	fmt.Printf("%s: %d records indexed -> %s\n", src, len(entries), out)
	return nil
}
