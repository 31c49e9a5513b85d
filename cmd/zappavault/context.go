package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"zappavault/internal/config"
	"zappavault/internal/logging"
	"zappavault/internal/services"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool
	strictFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
	runID      string
}

func newCommandContext(configFlag *string, jsonFlag, strictFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
		strictFlag: strictFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		now := time.Now()
		logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, now, logging.RetentionTarget{
			Dir:     cfg.Paths.LogDir,
			Pattern: logging.LogFilePattern,
			Exclude: []string{logging.DailyLogPath(cfg.Paths.LogDir, now)},
		})
		c.runID = uuid.NewString()
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// runContext returns a context cancelled on SIGINT or SIGTERM that carries
// the run id and command name, and a logger bound to the same fields.
func (c *commandContext) runContext(cmd *cobra.Command) (context.Context, context.CancelFunc, *slog.Logger, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, nil, err
	}
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx := services.WithRunID(parent, c.runID)
	ctx = services.WithCommand(ctx, commandName(cmd))
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	return ctx, stop, logging.WithContext(ctx, logger), nil
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// strictError turns recorded item failures into a command error when
// --strict is set. Without it, partial success exits zero.
func (c *commandContext) strictError(logger *slog.Logger, failures *services.Failures) error {
	if failures.Len() == 0 {
		return nil
	}
	logging.WarnWithContext(logger, "items failed", "item_failures",
		logging.Failures(failures),
		logging.Bool("strict", c.strictFlag != nil && *c.strictFlag),
		logging.String(logging.FieldErrorHint, "rerun with --json to list every failing item"))
	if c.strictFlag == nil || !*c.strictFlag {
		return nil
	}
	return fmt.Errorf("%d item(s) failed: %w", failures.Len(), failures.Err())
}

func commandName(cmd *cobra.Command) string {
	path := cmd.CommandPath()
	if root := cmd.Root(); root != nil {
		path = strings.TrimPrefix(path, root.Name())
	}
	return strings.TrimSpace(path)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
