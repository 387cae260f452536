package config

import (
	"flag"
	"os"

	"github.com/avolkov/fileshare/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-s string   base URL of the backend server
//	-t string   path of the persisted session token file
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "base URL of the backend server")
	fs.StringVar(&cfg.TokenFile, "t", cfg.TokenFile, "path of the session token file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
