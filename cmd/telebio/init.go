package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cehokocof/telebio/internal/seed"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create starter configuration and data files",
	Long: `Lay down the starter files for a new telebio setup:

  .env.example        template for your credentials
  data/phrases.json   phrases the list provider cycles through
  data/examples.json  few-shot examples for the llm provider

Existing files are left untouched unless --force is given.

Examples:
  telebio init               # Seed the current directory
  telebio init --dir ~/bio   # Seed another directory`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")

	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	written, err := seed.Write(flagDir, initForce)
	if err != nil {
		return err
	}

	if len(written) == 0 {
		fmt.Println("Nothing to do, all starter files already exist.")
		fmt.Println("Use --force to overwrite them.")
		return nil
	}

	for _, path := range written {
		fmt.Printf("Created %s\n", path)
	}

	fmt.Println("\nNext steps:")
	fmt.Println("  1. Copy .env.example to .env and fill in your credentials")
	fmt.Println("  2. telebio login        - Sign in to Telegram")
	fmt.Println("  3. telebio once         - Try a single bio update")
	fmt.Println("  4. telebio run          - Start the daemon")
	return nil
}
