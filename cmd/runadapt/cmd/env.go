package cmd

import (
	"fmt"
	"strconv"

	"github.com/runvoy/runadapt/internal/adapter"
	"github.com/runvoy/runadapt/internal/constants"
	"github.com/runvoy/runadapt/internal/output"

	"github.com/spf13/cobra"
)

var (
	envRuntime string
	envJSON    bool
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show what an adapter reports about its environment",
	RunE:  runEnv,
}

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().StringVar(&envRuntime, "runtime", string(constants.RuntimeServer), "Runtime: lambda, edge or server")
	envCmd.Flags().BoolVar(&envJSON, "json", false, "Print JSON")
}

func runEnv(cmd *cobra.Command, _ []string) error {
	env, err := getRuntimeEnv(cmd)
	if err != nil {
		return err
	}

	runtime, ok := constants.ParseRuntime(envRuntime)
	if !ok {
		return fmt.Errorf("unknown runtime %q", envRuntime)
	}

	caps, err := newCapabilities(env, runtime)
	if err != nil {
		return err
	}

	snap := caps.Environment()
	if envJSON {
		return output.JSON(snap)
	}

	output.Header("Environment")
	output.KeyValueBold("runtime", string(snap.RuntimeID))
	output.KeyValue("mode", string(snap.Mode))
	output.KeyValue("persistent connections", strconv.FormatBool(caps.SupportsPersistentConnections()))
	output.KeyValue("db kind", snap.DBKind)
	if snap.DBHost != "" {
		output.KeyValue("db host", snap.DBHost)
	}
	if snap.DBPort != 0 {
		output.KeyValue("db port", strconv.Itoa(snap.DBPort))
	}
	output.Blank()
	return nil
}

func newCapabilities(env *runtimeEnv, runtime constants.Runtime) (adapter.Capabilities, error) {
	cfg, _ := env.adapterConfig()

	var (
		caps adapter.Capabilities
		err  error
	)
	switch runtime {
	case constants.RuntimeFunction:
		caps, err = adapter.NewFunction(cfg)
	case constants.RuntimeEdge:
		caps, err = adapter.NewEdge(cfg)
	default:
		caps, err = adapter.NewServer(cfg)
	}
	if err != nil {
		return nil, err
	}
	return caps, nil
}
