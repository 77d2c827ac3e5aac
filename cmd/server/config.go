package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type config struct {
	bind               string
	port               int
	storageType        string
	redisURL           string
	resultsURL         string
	queueTimeout       time.Duration
	sessionIdleTimeout time.Duration
	retireGrace        time.Duration
	verbose            bool
}

func (c *config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.storageType == "redis" && c.redisURL == "" {
		return errors.New("--redis-url required when --storage is redis")
	}
	return nil
}

func newCmd(cfg *config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TTT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "tictactoe-server",
		Short:         "Real-time two-player tic-tac-toe matchmaking and game server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "", "address to bind to (env: TTT_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 4000, "port to listen on (env: TTT_PORT)")
	fs.StringVar(&cfg.storageType, "storage", "memory", "session storage backend, memory or redis (env: TTT_STORAGE)")
	fs.StringVar(&cfg.redisURL, "redis-url", "", "redis connection URL (env: TTT_REDIS_URL)")
	fs.StringVar(&cfg.resultsURL, "results-url", "", "endpoint for posting finished game records, empty disables (env: TTT_RESULTS_URL)")
	fs.DurationVar(&cfg.queueTimeout, "queue-timeout", 5*time.Minute, "time before waiting players are evicted from the queue (env: TTT_QUEUE_TIMEOUT)")
	fs.DurationVar(&cfg.sessionIdleTimeout, "session-idle-timeout", 30*time.Minute, "time before idle game sessions are swept (env: TTT_SESSION_IDLE_TIMEOUT)")
	fs.DurationVar(&cfg.retireGrace, "retire-grace", 3*time.Second, "delay before a finished game's connections are released (env: TTT_RETIRE_GRACE)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "enable debug logging (env: TTT_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	return cmd
}
