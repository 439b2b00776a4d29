package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/runvoy/runadapt/internal/adapter"
	"github.com/runvoy/runadapt/internal/app"
	"github.com/runvoy/runadapt/internal/bridge"
	"github.com/runvoy/runadapt/internal/config"
	"github.com/runvoy/runadapt/internal/constants"
	"github.com/runvoy/runadapt/internal/logger"
	"github.com/runvoy/runadapt/internal/output"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath string
	debug      bool
	verbose    bool
)

type runtimeKey struct{}

// runtimeEnv is what every subcommand needs to build an adapter.
type runtimeEnv struct {
	cfg    *config.Config
	viper  *viper.Viper
	logger *slog.Logger
}

var rootCmd = &cobra.Command{
	Use:   constants.ProjectName,
	Short: "Run one HTTP handler on Lambda, edge isolates and plain servers",
	Long: fmt.Sprintf(`%s - %s
Run one HTTP handler on AWS Lambda (API Gateway v1, v2, ALB), edge isolates
and long-running servers.`, constants.ProjectName, *constants.GetVersion()),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		v, err := config.Open(configPath)
		if err != nil {
			return err
		}
		cfg, err := config.Unmarshal(v)
		if err != nil {
			return err
		}

		level := cfg.GetLogLevel()
		if debug {
			level = slog.LevelDebug
		}
		log := logger.Initialize(cfg.Environment(), level)

		if verbose {
			output.Infof("Mode: %s", cfg.Environment())
			output.Infof("Request timeout: %s", cfg.RequestTimeout)
		}

		cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey{}, &runtimeEnv{
			cfg:    cfg,
			viper:  v,
			logger: log,
		}))
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.Errorf("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default ~/"+constants.ConfigDirName+"/"+constants.ConfigFileName+")")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debugging logs")
}

func getRuntimeEnv(cmd *cobra.Command) (*runtimeEnv, error) {
	env, ok := cmd.Context().Value(runtimeKey{}).(*runtimeEnv)
	if !ok || env == nil {
		return nil, errors.New("configuration not loaded")
	}
	return env, nil
}

// adapterConfig wires the sample application into an adapter Config.
func (e *runtimeEnv) adapterConfig() (adapter.Config, *app.Router) {
	router := app.NewRouter()
	cfg := adapter.FromConfig(e.cfg, bridge.FromHTTP(router))
	cfg.Logger = e.logger
	cfg.Env = config.NewAccessor(e.viper)
	return cfg, router
}
