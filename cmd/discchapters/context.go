package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"discchapters/internal/analyzer"
	"discchapters/internal/config"
	"discchapters/internal/logging"
	"discchapters/internal/mpls"
	"discchapters/internal/resultcache"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	cache *resultcache.Store
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
				if err := cfg.Validate(); err != nil {
					c.configErr = err
					return
				}
			}
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// logger builds the command logger on the command's stderr. Every line it
// writes carries the run id stored in the returned context.
func (c *commandContext) logger(cmd *cobra.Command) (context.Context, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: cmd.ErrOrStderr(),
		File:   cfg.Logging.File,
	})
	if err != nil {
		return nil, nil, err
	}
	ctx := logging.WithRunID(commandCtx(cmd))
	return ctx, logging.WithContext(ctx, logger), nil
}

// newAnalyzer wires the parsers to the configured cache.
func (c *commandContext) newAnalyzer(ctx context.Context, logger *slog.Logger) (*analyzer.Analyzer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts := mpls.Options{
		SweepMinDrift: cfg.Bluray.SweepMinDrift(),
		SweepRatio:    cfg.Bluray.SweepRatio,
		ExtraPatterns: cfg.Bluray.ExtraPatterns,
	}
	if !cfg.Cache.Enabled {
		return analyzer.New(opts, nil, logger), nil
	}
	store, err := c.openCache(ctx)
	if err != nil {
		return nil, err
	}
	return analyzer.New(opts, store, logger), nil
}

func (c *commandContext) openCache(ctx context.Context) (*resultcache.Store, error) {
	if c.cache != nil {
		return c.cache, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := resultcache.Open(ctx, cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	c.cache = store
	return store, nil
}

func (c *commandContext) close() error {
	if c.cache == nil {
		return nil
	}
	err := c.cache.Close()
	c.cache = nil
	return err
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
