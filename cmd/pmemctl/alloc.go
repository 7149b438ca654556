package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pmemkit/pool"
)

var (
	allocZero bool
	allocRoot int
)

func init() {
	cmd := newAllocCmd()
	cmd.Flags().BoolVar(&allocZero, "zero", false, "Zero-fill the allocation")
	cmd.Flags().IntVar(&allocRoot, "root", -1, "Store the allocation offset in this root slot")
	rootCmd.AddCommand(cmd)
	rootCmd.AddCommand(newFreeCmd())
}

func newAllocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alloc <pool> <size>",
		Short: "Allocate a block and print its offset",
		Long: `The alloc command allocates size bytes from the pool, persists the
block and prints its offset from the start of the pool.

Example:
  pmemctl alloc data.pmem 4096 --zero
  pmemctl alloc data.pmem 128 --root 0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlloc(args)
		},
	}
	return cmd
}

func runAlloc(args []string) error {
	size, err := parseUint("size", args[1])
	if err != nil {
		return err
	}
	return withPool(args[0], func(m *pool.Manager, id pool.PoolID) error {
		h, err := m.Allocate(id, int64(size), allocZero)
		if err != nil {
			return err
		}
		if err := m.Persist(id, h, 0, true); err != nil {
			return err
		}
		off, err := offsetOf(m, id, h)
		if err != nil {
			return err
		}
		usable, err := m.SizeOf(id, h)
		if err != nil {
			return err
		}
		if allocRoot >= 0 {
			if err := m.SetRoot(id, allocRoot, off); err != nil {
				return err
			}
			printVerbose("Stored offset in root slot %d\n", allocRoot)
		}

		if jsonOut {
			return printJSON(map[string]any{"offset": off, "size": usable})
		}
		printInfo("%#x\n", off)
		printVerbose("Usable size: %s\n", formatBytes(usable))
		return nil
	})
}

func newFreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "free <pool> <offset>",
		Short: "Free the block at an offset",
		Long: `The free command releases a block previously returned by alloc.

Example:
  pmemctl free data.pmem 0x1010`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFree(args)
		},
	}
}

func runFree(args []string) error {
	off, err := parseUint("offset", args[1])
	if err != nil {
		return err
	}
	return withPool(args[0], func(m *pool.Manager, id pool.PoolID) error {
		h, err := handleAt(m, id, off)
		if err != nil {
			return err
		}
		if err := m.Free(id, h); err != nil {
			return fmt.Errorf("failed to free %#x: %w", off, err)
		}
		printVerbose("Freed block at %#x\n", off)
		return nil
	})
}
