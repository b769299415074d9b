package cmd

import (
	"github.com/achilleasa/octocull/config"
	"github.com/achilleasa/octocull/log"
	"github.com/urfave/cli"
)

var logger = log.New("octocull")

// Apply the configured log level; -v and -vv take precedence.
func setupLogging(ctx *cli.Context, cfg *config.Config) {
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
