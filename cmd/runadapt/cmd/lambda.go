package cmd

import (
	"github.com/runvoy/runadapt/internal/adapter"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Serve the sample application as an AWS Lambda function",
	Long: `Starts the Lambda runtime loop. API Gateway REST, HTTP API and ALB
events are detected per invocation. Only useful inside a Lambda environment.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := getRuntimeEnv(cmd)
		if err != nil {
			return err
		}

		cfg, router := env.adapterConfig()
		fn, err := adapter.NewFunction(cfg)
		if err != nil {
			return err
		}
		router.Bind(fn)

		lambda.StartWithOptions(fn, lambda.WithContext(cmd.Context()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lambdaCmd)
}
