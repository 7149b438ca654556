package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pmemkit/pool"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "pmemctl",
	Short: "Create and inspect persistent memory pools",
	Long: `pmemctl creates persistent memory pool files and operates on them:
allocating and freeing blocks, reading and writing root slots, and
flushing pool contents to storage.

Allocations are identified by their offset from the start of the pool,
which stays valid across runs.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// logger returns the logger handed to the pool manager: debug output on
// stderr with --verbose, nothing otherwise.
func logger() *slog.Logger {
	if verbose {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// withPool opens the pool at path, runs fn and shuts the manager down.
func withPool(path string, fn func(m *pool.Manager, id pool.PoolID) error) (err error) {
	opts := pool.DefaultOptions()
	opts.Logger = logger()
	m := pool.New(opts)
	defer func() {
		err = errors.Join(err, m.Shutdown())
	}()

	printVerbose("Opening pool: %s\n", path)
	id, err := m.Open(0, path, false)
	if err != nil {
		return err
	}
	return fn(m, id)
}

// handleAt converts a pool offset given on the command line to a handle.
func handleAt(m *pool.Manager, id pool.PoolID, offset uint64) (pool.Handle, error) {
	base, err := m.BaseAddress(id)
	if err != nil {
		return pool.InvalidHandle, err
	}
	return pool.Encode(base + uintptr(offset)), nil
}

// offsetOf converts a handle to its offset from the pool base.
func offsetOf(m *pool.Manager, id pool.PoolID, h pool.Handle) (uint64, error) {
	base, err := m.BaseAddress(id)
	if err != nil {
		return 0, err
	}
	return uint64(pool.Decode(h) - base), nil
}

// parseUint accepts decimal, 0x-prefixed hex and 0o/0b forms.
func parseUint(what, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", what, s, err)
	}
	return v, nil
}
