package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/wavecore/internal/app"
	"github.com/llehouerou/wavecore/internal/cache"
	"github.com/llehouerou/wavecore/internal/errmsg"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the resource cache",
}

var cacheUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show disk usage per kind",
	Args:  cobra.NoArgs,
	RunE:  runCacheUsage,
}

var cacheSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired entries",
	Args:  cobra.NoArgs,
	RunE:  runCacheSweep,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [kind...]",
	Short: "Empty the given kinds, or the whole cache",
	Long:  "Empty the given kinds (image, payload, audio), or every kind when none is given.",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheUsageCmd, cacheSweepCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

// withCache opens the configured cache, runs fn and closes it. Closing waits
// for pending disk operations.
func withCache(op errmsg.Op, fn func(*cache.Manager) error) (err error) {
	cfg, logCloser, err := loadConfig()
	if err != nil {
		return err
	}
	defer logCloser.Close()

	c, err := app.OpenCache(cfg)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpCacheOpen, err))
	}
	defer func() {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = errors.New(errmsg.Format(op, cerr))
		}
	}()

	if err := fn(c); err != nil {
		return errors.New(errmsg.Format(op, err))
	}
	return nil
}

func runCacheUsage(cmd *cobra.Command, _ []string) error {
	return withCache(errmsg.OpCacheUsage, func(c *cache.Manager) error {
		var total int64
		for _, kind := range cache.Kinds {
			n, err := c.Usage(cmd.Context(), kind)
			if err != nil {
				return err
			}
			total += n
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s\t%s\n", kind, humanize.Bytes(uint64(n)))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-8s\t%s\n", "total", humanize.Bytes(uint64(total)))
		return nil
	})
}

func runCacheSweep(cmd *cobra.Command, _ []string) error {
	return withCache(errmsg.OpCacheSweep, func(c *cache.Manager) error {
		n, err := c.SweepExpired(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired entries\n", n)
		return nil
	})
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	kinds := make([]cache.Kind, 0, len(args))
	for _, arg := range args {
		kind, err := cache.ParseKind(arg)
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpCacheClear, err))
		}
		kinds = append(kinds, kind)
	}
	return withCache(errmsg.OpCacheClear, func(c *cache.Manager) error {
		c.Clear(kinds...)
		return c.Flush(context.WithoutCancel(cmd.Context()))
	})
}
