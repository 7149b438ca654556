package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pmemkit/pool"
)

var (
	flushLevel  string
	flushOffset string
)

func init() {
	cmd := newFlushCmd()
	cmd.Flags().StringVar(&flushLevel, "level", "persist", "Durability level: flush, sync or persist")
	cmd.Flags().StringVar(&flushOffset, "offset", "", "Only the block at this offset (default: whole pool)")
	rootCmd.AddCommand(cmd)
}

func newFlushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flush <pool>",
		Short: "Write pool contents back to storage",
		Long: `The flush command makes the whole pool, or one block, durable.

Levels, weakest first:
  flush    schedule write-back and wait for it before exiting
  sync     write back synchronously
  persist  write back and flush the device cache

Example:
  pmemctl flush data.pmem
  pmemctl flush data.pmem --offset 0x1010 --level sync`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlush(args)
		},
	}
	return cmd
}

func runFlush(args []string) error {
	switch flushLevel {
	case "flush", "sync", "persist":
	default:
		return fmt.Errorf("unknown level %q (want flush, sync or persist)", flushLevel)
	}

	return withPool(args[0], func(m *pool.Manager, id pool.PoolID) error {
		h := pool.InvalidHandle
		if flushOffset != "" {
			off, err := parseUint("offset", flushOffset)
			if err != nil {
				return err
			}
			if h, err = handleAt(m, id, off); err != nil {
				return err
			}
		}

		var err error
		switch flushLevel {
		case "flush":
			if err = m.Flush(id, h, 0, true); err == nil {
				err = m.Drain(id)
			}
		case "sync":
			err = m.Sync(id, h, 0, true)
		default:
			err = m.Persist(id, h, 0, true)
		}
		if err != nil {
			return err
		}
		printVerbose("Pool %s written back (%s)\n", args[0], flushLevel)
		return nil
	})
}
