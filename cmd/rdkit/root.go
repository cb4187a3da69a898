package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "rdkit",
	Short: "MDL molfile and SD file toolkit",
	Long:  "rdkit parses MDL mol/SD files (V2000 and V3000), validates and indexes multi-record streams, and maintains a SQLite molecule catalog.",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output (debug-level diagnostics)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress parse warnings")
	rootCmd.PersistentFlags().Bool("no-sanitize", false, "Skip post-parse chemistry passes")
	rootCmd.PersistentFlags().Bool("keep-hs", false, "Keep explicit hydrogens (implies full sanitization)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("no_sanitize", rootCmd.PersistentFlags().Lookup("no-sanitize"))
	_ = viper.BindPFlag("keep_hs", rootCmd.PersistentFlags().Lookup("keep-hs"))
}

func initConfig() {
	viper.SetEnvPrefix("RDKIT")
	viper.AutomaticEnv()

	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	if viper.GetBool("quiet") {
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
