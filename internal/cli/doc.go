// Package cli implements the command-line interface for nps-places.
//
// The root command runs the interactive shell: pick a state, browse its
// national sites, and look up places near one of them. The states, sites and
// nearby subcommands expose the same lookups non-interactively, with text or
// JSON output. All commands share one response cache.
package cli
