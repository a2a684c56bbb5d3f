// paytrail shows a client's payment status timeline in the terminal.
//
// Usage:
//
//	paytrail [flags]            open the payment status screen
//	paytrail timeline [--json]  print the timeline
//	paytrail serve [--seed]     run the companion server
//	paytrail seed               load demo data
//	paytrail clients            list clients in the database
//	paytrail status             show companion server metrics
//	paytrail version            print version information
//
// Settings come from flags, PAYTRAIL_* environment variables, or a .env
// file in the working directory.
package main

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/Mr-Dark-debug/paytrail/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	// .env values never override variables already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[WARN] Reading .env: %v", err)
	}

	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
