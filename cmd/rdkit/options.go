package main

import (
	"github.com/spf13/viper"

	"github.com/clarablanes/rdkit/molfile"
)

// parseOptions maps the persistent flags onto the parser options.
func parseOptions() molfile.Options {
	opts := molfile.DefaultOptions()
	if viper.GetBool("no_sanitize") {
		opts.Sanitize = false
	}
	if viper.GetBool("keep_hs") {
		opts.RemoveHs = false
	}
	return opts
}
