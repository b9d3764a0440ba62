package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wgsmaster/internal/driver"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the scan cache",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean [dir]",
	Short: "Remove every cached scan result",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			cache *driver.ScanCache
			err   error
		)
		if len(args) > 0 && args[0] != "" {
			cache, err = driver.OpenScanCacheAt(args[0])
		} else {
			cache, err = driver.OpenScanCache("wgsmaster")
		}
		if err != nil {
			return fmt.Errorf("failed to open scan cache: %w", err)
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to clean scan cache: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "scan cache cleared")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheCleanCmd)
}
