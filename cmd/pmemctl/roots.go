package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pmemkit/pool"
)

func init() {
	cmd := &cobra.Command{
		Use:   "root",
		Short: "Read and write root slots",
		Long: fmt.Sprintf(`Each pool has %d persistent root slots holding one unsigned 64-bit
value each, typically the offset of a top-level data structure.`, pool.SlotCapacity()),
	}
	cmd.AddCommand(newRootGetCmd(), newRootSetCmd())
	rootCmd.AddCommand(cmd)
}

func newRootGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <pool> [key]",
		Short: "Print one root slot, or every non-zero slot",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRootGet(args)
		},
	}
}

func newRootSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <pool> <key> <value>",
		Short: "Store a value in a root slot and persist it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRootSet(args)
		},
	}
}

func parseKey(s string) (int, error) {
	key, err := parseUint("key", s)
	if err != nil {
		return 0, err
	}
	if key >= uint64(pool.SlotCapacity()) {
		return 0, fmt.Errorf("key %d out of range [0, %d)", key, pool.SlotCapacity())
	}
	return int(key), nil
}

func runRootGet(args []string) error {
	keys := make([]int, 0, pool.SlotCapacity())
	if len(args) == 2 {
		key, err := parseKey(args[1])
		if err != nil {
			return err
		}
		keys = append(keys, key)
	} else {
		for key := range pool.SlotCapacity() {
			keys = append(keys, key)
		}
	}

	return withPool(args[0], func(m *pool.Manager, id pool.PoolID) error {
		roots := make(map[int]uint64)
		for _, key := range keys {
			v, err := m.Root(id, key)
			if err != nil {
				return err
			}
			if v != 0 || len(keys) == 1 {
				roots[key] = v
			}
		}
		if jsonOut {
			return printJSON(roots)
		}
		for _, key := range keys {
			if v, ok := roots[key]; ok {
				printInfo("%d: %#x\n", key, v)
			}
		}
		return nil
	})
}

func runRootSet(args []string) error {
	key, err := parseKey(args[1])
	if err != nil {
		return err
	}
	value, err := parseUint("value", args[2])
	if err != nil {
		return err
	}
	return withPool(args[0], func(m *pool.Manager, id pool.PoolID) error {
		if err := m.SetRoot(id, key, value); err != nil {
			return err
		}
		printVerbose("Root %d set to %#x\n", key, value)
		return nil
	})
}
