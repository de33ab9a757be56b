package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/peoplepack/pkg/cache"
	"github.com/matzehuels/peoplepack/pkg/config"
	"github.com/matzehuels/peoplepack/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached snapshots, scenes and renders",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cacheStatsCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// localCache opens the file cache, or reports why there is none.
func (c *CLI) localCache() (*cache.FileCache, bool, error) {
	switch c.Config.Cache.Kind {
	case config.CacheRedis:
		printWarning("Redis entries expire on their own; nothing to inspect locally")
		printDetail("Address: %s", c.Config.Cache.RedisAddr)
		return nil, false, nil
	case config.CacheNone:
		printInfo("Caching is disabled")
		return nil, false, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return nil, false, fmt.Errorf("get cache dir: %w", err)
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, false, err
	}
	return fc, true, nil
}

// parseStage accepts a stage name, or "" for every stage.
func parseStage(name string) (cache.Stage, error) {
	if name == "" {
		return "", nil
	}
	for _, s := range cache.Stages {
		if string(s) == name {
			return s, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown cache stage %q (want snapshot, scene or artifact)", name)
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var stageName string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached entries from the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, err := parseStage(stageName)
			if err != nil {
				return err
			}
			fc, ok, err := c.localCache()
			if !ok {
				return err
			}
			count, err := fc.Clear(stage)
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %s", plural(count, "cached entry", "cached entries"))
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}

	cmd.Flags().StringVar(&stageName, "stage", "", "only clear one stage: snapshot, scene or artifact")

	return cmd
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show live entries per pipeline stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, ok, err := c.localCache()
			if !ok {
				return err
			}
			usage, err := fc.Usage()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), usageTable(usage))
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// usageTable renders cache usage with one row per stage.
func usageTable(usage map[cache.Stage]cache.Usage) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(listDimStyle).
		Headers("stage", "entries", "size")
	for _, s := range cache.Stages {
		u := usage[s]
		t.Row(string(s), fmt.Sprint(u.Entries), formatBytes(u.Bytes))
	}
	return t.Render()
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// configCommand prints the effective configuration.
func (c *CLI) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				path = config.Path()
			}
			printKeyValue("config", path)
			printKeyValue("cache", c.Config.Cache.Kind)
			printKeyValue("source", c.Config.Source.Kind)
			printNewline()
			fmt.Fprint(cmd.OutOrStdout(), c.Config.String())
			return nil
		},
	}
}
