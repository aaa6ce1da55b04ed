package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/raywall/cpaas-toolkit/api"
	"github.com/raywall/cpaas-toolkit/endpoint"
	"github.com/raywall/cpaas-toolkit/pkg/config"
	"github.com/raywall/cpaas-toolkit/pkg/config/injector"
	"github.com/raywall/cpaas-toolkit/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootOptions reúne as flags globais. Os defaults vêm das variáveis de
// ambiente lidas por config.Load.
type rootOptions struct {
	env       string
	apiKey    string
	endpoints string
	region    string
	timeout   time.Duration
	logLevel  string
}

func newRootCmd() *cobra.Command {
	defaults, err := config.Load()
	if err != nil {
		defaults = &config.Settings{Environment: string(endpoint.DefaultEnvironment), Timeout: 30 * time.Second}
	}

	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "cpaas",
		Short:         "Ferramentas para os microserviços CPaaS",
		Long:          "cpaas resolve endpoints, renderiza templates %token% e chama os serviços\nde identidade, mensagens, objetos e lambdas da plataforma CPaaS.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fs := cmd.PersistentFlags()
	fs.StringVarP(&opts.env, "env", "e", defaults.Environment, "ambiente CPaaS (dev, test, stage, prod)")
	fs.StringVar(&opts.apiKey, "api-key", defaults.APIKey, "application-key (aceita ${env.X}, ${ssm.X}, ${secret.X})")
	fs.StringVar(&opts.endpoints, "endpoints", defaults.EndpointsSource, "fonte da tabela de endpoints (arquivo, s3:// ou dynamodb://)")
	fs.StringVar(&opts.region, "region", defaults.AWSRegion, "região AWS")
	fs.DurationVar(&opts.timeout, "timeout", defaults.Timeout, "timeout de cada chamada")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "nível de log (stderr)")

	cmd.AddCommand(
		newEndpointCmd(opts),
		newRenderCmd(),
		newIdentityCmd(opts),
		newSMSCmd(opts),
		newObjectsCmd(opts),
		newLambdaCmd(opts),
		newPipelineCmd(opts),
	)
	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) zerolog.Logger {
	return logger.ConfigureWriter(config.LoggingConf{
		Enabled: true,
		Level:   o.logLevel,
		Format:  "console",
	}, "cpaas-cli", cmd.ErrOrStderr())
}

func (o *rootOptions) resolver(ctx context.Context, lg zerolog.Logger) (*endpoint.Resolver, error) {
	table, err := endpoint.NewLoader(endpoint.WithRegion(o.region)).Load(ctx, o.endpoints)
	if err != nil {
		return nil, err
	}
	return endpoint.NewResolver(table, endpoint.WithLogger(lg)), nil
}

// client monta o cliente CPaaS e resolve a api key.
func (o *rootOptions) client(cmd *cobra.Command) (*api.Client, string, error) {
	ctx := cmd.Context()
	lg := o.logger(cmd)

	resolver, err := o.resolver(ctx, lg)
	if err != nil {
		return nil, "", err
	}

	apiKey, err := injector.New(injector.WithRegion(o.region)).Interpolate(ctx, o.apiKey)
	if err != nil {
		return nil, "", fmt.Errorf("falha ao resolver api key: %w", err)
	}
	if apiKey == "" {
		return nil, "", fmt.Errorf("api key não informada (--api-key ou CPAAS_API_KEY)")
	}

	client := api.NewClient(resolver,
		api.WithEnvironment(o.env),
		api.WithTimeout(o.timeout),
		api.WithLogger(lg),
	)
	return client, apiKey, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readInput lê um arquivo, ou stdin quando path é "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
