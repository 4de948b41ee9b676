package commands

import (
	"context"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"compsec/internal/config"
	"compsec/internal/database"
	"compsec/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "compsecctl",
	Short:         "compsecctl manages the compliance and risk store",
	Long:          `compsecctl seeds and imports compliance frameworks, prints the compliance dashboard and open gaps, and scores risks offline.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Duration("timeout", 2*time.Minute, "Give up after this long")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level for database and connection messages")
}

// connect loads configuration from the environment and opens the store the server uses.
func connect(cmd *cobra.Command) (context.Context, context.CancelFunc, error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	level, _ := cmd.Flags().GetString("log-level")

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	zl, err := logger.New(level, "console")
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(zl)

	if err := database.Init(cfg.DBDSN, cfg.DBConnectAttempts); err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	if cfg.RedisAddr != "" {
		if _, err := database.UseRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
			zl.Warn("redis unavailable, issuing identifiers from postgres", zap.Error(err))
		}
	}
	return ctx, cancel, nil
}
