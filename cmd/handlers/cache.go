package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gapscout/internal/config"
	"gapscout/internal/logger"
	"gapscout/internal/store"
)

// NewCacheCmd creates the cache management command
func NewCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the analysis result cache",
		Long:  `Inspect and clear the cached analysis results (SQLite or Redis, per cache.backend).`,
	}

	// Add subcommands
	cacheCmd.AddCommand(newCacheStatsCmd())
	cacheCmd.AddCommand(newCacheClearCmd())

	return cacheCmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics and storage information",
		Long:  `Display the number of cached analyses and gaps and, for SQLite, the storage used.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runCacheStats(cmd.Context()); err != nil {
				logger.Error("Failed to get cache stats", err)
				os.Exit(1)
			}
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the cache (removes all cached analyses)",
		Long:  `Remove cached analyses. With --expired only entries past their TTL are removed (SQLite only).`,
		Run: func(cmd *cobra.Command, args []string) {
			confirm, _ := cmd.Flags().GetBool("confirm")
			expired, _ := cmd.Flags().GetBool("expired")
			if err := runCacheClear(cmd.Context(), confirm, expired); err != nil {
				logger.Error("Failed to clear cache", err)
				os.Exit(1)
			}
		},
	}

	clearCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	clearCmd.Flags().Bool("expired", false, "Only remove expired entries")
	return clearCmd
}

var errCacheDisabled = errors.New("result cache is disabled (cache.backend: none)")

func openConfiguredCache(ctx context.Context) (store.ResultCache, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cache, err := openCache(ctx, config.Get())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache store: %w", err)
	}
	if cache == nil {
		return nil, errCacheDisabled
	}
	return cache, nil
}

func runCacheStats(ctx context.Context) error {
	cache, err := openConfiguredCache(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Error("Failed to close cache store", err)
		}
	}()

	stats, err := cache.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get cache statistics: %w", err)
	}

	fmt.Println("📊 Cache Statistics")
	fmt.Println("==================")
	fmt.Printf("🗄️  Backend: %s\n", stats.Backend)
	fmt.Printf("🔎 Analyses cached: %d\n", stats.AnalysisCount)
	fmt.Printf("🎯 Gaps cached: %d\n", stats.GapCount)
	if stats.CacheSize > 0 {
		fmt.Printf("💾 Cache size: %.2f MB\n", float64(stats.CacheSize)/1024/1024)
	}
	if !stats.LastUpdated.IsZero() {
		fmt.Printf("📅 Last updated: %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func runCacheClear(ctx context.Context, confirm, expiredOnly bool) error {
	if !confirm && !expiredOnly {
		fmt.Print("⚠️  This will remove all cached analyses. Continue? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" && response != "yes" {
			fmt.Println("Cache clear cancelled")
			return nil
		}
	}

	cache, err := openConfiguredCache(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Error("Failed to close cache store", err)
		}
	}()

	if expiredOnly {
		sqlite, ok := cache.(*store.Store)
		if !ok {
			return fmt.Errorf("--expired is only supported by the sqlite backend; %s expires entries itself", cache.Backend())
		}
		removed, err := sqlite.CleanupExpired(ctx)
		if err != nil {
			return fmt.Errorf("failed to remove expired entries: %w", err)
		}
		fmt.Printf("✅ Removed %d expired analyses\n", removed)
		return nil
	}

	fmt.Println("🗑️  Clearing cache...")
	if err := cache.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Println("✅ Cache cleared successfully")
	return nil
}
