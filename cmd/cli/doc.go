// Package cli assembles the changeflow command-line application: the Cobra
// root command, configuration loading with environment overrides, structured
// logging, and the resolve and baselines subcommands.
package cli
