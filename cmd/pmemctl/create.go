package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pmemkit/pool"
)

var createSize int64

func init() {
	cmd := newCreateCmd()
	cmd.Flags().Int64Var(&createSize, "size", 0, "Pool capacity in bytes (minimum 1 MiB)")
	rootCmd.AddCommand(cmd)
}

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <pool>",
		Short: "Create and format a new pool file",
		Long: `The create command creates a pool file, replacing any existing file at
the same path. Sizes below 1 MiB are raised to 1 MiB and sizes are rounded
up to a whole page.

Example:
  pmemctl create data.pmem --size 67108864`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(args)
		},
	}
	return cmd
}

func runCreate(args []string) (err error) {
	path := args[0]
	opts := pool.DefaultOptions()
	opts.Logger = logger()
	m := pool.New(opts)
	defer func() {
		err = errors.Join(err, m.Shutdown())
	}()

	id, err := m.Open(createSize, path, true)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	capacity, err := m.Capacity(id)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{"path": path, "capacity": capacity})
	}
	printInfo("Created %s: %s\n", path, formatBytes(capacity))
	return nil
}
