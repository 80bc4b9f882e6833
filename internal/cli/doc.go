// Package cli wires together the Cobra command tree for the logchange binary.
//
// It defines the root command and all subcommands (changelog, commit-msg,
// compare, experiment, cache, config, models, hook, version), binds flags,
// reads configuration, opens the response cache and rate limiter shared by a
// run, and maps failures to exit codes.
package cli
