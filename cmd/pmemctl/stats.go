package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/pmemkit/pool"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <pool>",
		Short: "Show allocator statistics",
		Long: `The stats command shows how the pool's data area is split between
allocated and free blocks.

Example:
  pmemctl stats data.pmem
  pmemctl stats data.pmem --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
	return cmd
}

func runStats(args []string) error {
	return withPool(args[0], func(m *pool.Manager, id pool.PoolID) error {
		st, err := m.Stats(id)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(st)
		}

		printInfo("\nPool Statistics:\n")
		printInfo("  Capacity: %s\n", formatBytes(st.Capacity))
		printInfo("  Data area: %s\n", formatBytes(st.DataSize))
		printInfo("  Used: %s\n", formatBytes(st.Used))
		printInfo("  Free: %s in %s\n", formatBytes(st.Free), printer.Sprintf("%d blocks", st.FreeBlocks))
		printInfo("  Largest free block: %s\n", formatBytes(st.LargestFree))
		if st.DataSize > 0 {
			printInfo("  Utilization: %.1f%%\n", float64(st.Used)*100/float64(st.DataSize))
		}
		return nil
	})
}
