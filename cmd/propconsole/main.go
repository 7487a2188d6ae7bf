// Command propconsole runs the property-management console.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "propconsole",
		Short: "Property management console",
	}

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		consumeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
