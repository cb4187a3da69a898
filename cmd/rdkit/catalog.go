package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clarablanes/rdkit/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Maintain a SQLite molecule catalog",
}

var catalogIngestCmd = &cobra.Command{
	Use:   "ingest <file.sdf>",
	Short: "Parse an SD file into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogIngest,
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Query the catalog by formula or name",
	Args:  cobra.NoArgs,
	RunE:  runCatalogSearch,
}

func init() {
	catalogCmd.PersistentFlags().String("db", "catalog.db", "SQLite database path")
	_ = viper.BindPFlag("db", catalogCmd.PersistentFlags().Lookup("db"))

	catalogIngestCmd.Flags().Int("workers", runtime.NumCPU(), "Parallel parse workers")

	catalogSearchCmd.Flags().String("formula", "", "Exact Hill formula to match")
	catalogSearchCmd.Flags().String("name", "", "Name substring to match")
	catalogSearchCmd.Flags().Int("limit", 50, "Maximum rows for name search")

	catalogCmd.AddCommand(catalogIngestCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogIngest(cmd *cobra.Command, args []string) error {
	workers, _ := cmd.Flags().GetInt("workers")

	db, err := catalog.Open(viper.GetString("db"))
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.Ingest(cmd.Context(), args[0], parseOptions(), workers)
	if err != nil {
		return err
	}
	fmt.Printf("batch %s: %d records, %d parsed, %d failed (%.1fs)\n",
		stats.BatchID, stats.Records, stats.Parsed, stats.Failed, stats.Took.Seconds())

	if stats.Failed > 0 {
		failures, err := db.Failures(stats.BatchID)
		if err != nil {
			return err
		}
		for _, f := range failures {
			fmt.Printf("  FAIL record %d (line %d): %s\n", f.Record, f.Line, f.Error)
		}
	}
	return nil
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	formula, _ := cmd.Flags().GetString("formula")
	name, _ := cmd.Flags().GetString("name")
	limit, _ := cmd.Flags().GetInt("limit")
	if formula == "" && name == "" {
		return fmt.Errorf("one of --formula or --name is required")
	}

	db, err := catalog.Open(viper.GetString("db"))
	if err != nil {
		return err
	}
	defer db.Close()

	var rows []catalog.Row
	if formula != "" {
		rows, err = db.ByFormula(formula)
	} else {
		rows, err = db.SearchName(name, limit)
	}
	if err != nil {
		return err
	}

	for _, r := range rows {
		fmt.Printf("%s\trecord %d\t%s\t%s\t(%d atoms, %d bonds)\n",
			r.Source, r.Record, r.Name, r.Formula, r.NumAtoms, r.NumBonds)
	}
	fmt.Printf("%d rows\n", len(rows))
	return nil
}
