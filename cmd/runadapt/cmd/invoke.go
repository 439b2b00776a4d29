package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/runvoy/runadapt/internal/adapter"
	"github.com/runvoy/runadapt/internal/output"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

var invokeEventPath string

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Run one Lambda event through the function adapter locally",
	Long: `Reads an API Gateway REST, HTTP API or ALB event from a JSON or YAML
file ("-" for stdin), runs it through the sample application and prints the
response envelope.`,
	Example: `  runadapt invoke --event events/apigw-v2.json
  runadapt invoke --event events/alb.yaml`,
	RunE: runInvoke,
}

func init() {
	rootCmd.AddCommand(invokeCmd)
	invokeCmd.Flags().StringVar(&invokeEventPath, "event", "", "Event file (.json, .yaml or - for stdin)")
	_ = invokeCmd.MarkFlagRequired("event")
}

func runInvoke(cmd *cobra.Command, _ []string) error {
	env, err := getRuntimeEnv(cmd)
	if err != nil {
		return err
	}

	payload, err := loadEvent(invokeEventPath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, router := env.adapterConfig()
	fn, err := adapter.NewFunction(cfg)
	if err != nil {
		return err
	}
	router.Bind(fn)

	ctx := lambdacontext.NewContext(cmd.Context(), &lambdacontext.LambdaContext{
		AwsRequestID: uuid.NewString(),
	})
	out, err := fn.Invoke(ctx, payload)
	if err != nil {
		return err
	}

	if verbose {
		output.Infof("Status: %s", output.StatusBadge(int(gjson.GetBytes(out, "statusCode").Int())))
	}
	return output.JSON(out)
}

// loadEvent reads an event and returns it as JSON. YAML files are converted.
func loadEvent(path string, stdin io.Reader) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read event: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc map[string]any
		if err = yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML event: %w", err)
		}
		return json.Marshal(doc)
	default:
		if !gjson.ValidBytes(raw) {
			return nil, fmt.Errorf("event %s is not valid JSON", path)
		}
		return raw, nil
	}
}
