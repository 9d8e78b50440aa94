// Command ormc-migrate manages the schema of the FSM cache database
// ormc's collision engine reads and writes, independent of any compile
// run — useful in CI to pre-warm or inspect the cache file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/svt/orm/internal/collision/cache"
)

var cachePath string

func main() {
	root := &cobra.Command{
		Use:   "ormc-migrate",
		Short: "Manage the ormc FSM cache database schema",
	}
	root.PersistentFlags().StringVarP(&cachePath, "cache-path", "p", "ormc-fsm-cache.db", "path to the FSM cache sqlite database")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return cache.MigrateUp(cachePath)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recently applied migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return cache.MigrateDown(cachePath)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print applied/pending migration status",
			RunE: func(cmd *cobra.Command, args []string) error {
				return cache.MigrateStatus(cachePath)
			},
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
