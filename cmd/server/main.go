package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/raywall/cpaas-toolkit/endpoint"
	"github.com/raywall/cpaas-toolkit/pkg/config"
	"github.com/raywall/cpaas-toolkit/pkg/config/injector"
	"github.com/raywall/cpaas-toolkit/pkg/logger"
	"github.com/raywall/cpaas-toolkit/pkg/observability"
	"github.com/raywall/cpaas-toolkit/pkg/transport"
	"github.com/rs/zerolog/log"
)

var (
	// Variáveis injetáveis para mocking
	serverStarter = transport.StartHTTPServer
	lambdaStarter = func(h *transport.LambdaHandler) { lambda.Start(h.Handle) }
	sqsFactory    = newSQSClient
	tableLoader   = endpoint.NewLoader
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := loadSettings(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("FATAL: configuração inválida")
	}

	if err := run(ctx, settings); err != nil {
		log.Fatal().Err(err).Msg("FATAL")
	}
}

// loadSettings lê o ambiente, resolve referências ${...} e valida.
func loadSettings(ctx context.Context) (*config.Settings, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	inj := injector.New(injector.WithRegion(settings.AWSRegion))
	if err := inj.Inject(ctx, settings); err != nil {
		return nil, fmt.Errorf("falha ao resolver referências de configuração: %w", err)
	}

	if err := config.NewValidator().Validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// run contém a lógica principal testável
func run(ctx context.Context, settings *config.Settings) error {
	lg := logger.Configure(settings.Logging, "cpaas-server")

	provider, err := observability.SetupMetrics(settings.Metrics)
	if err != nil {
		return err
	}
	if closer, ok := provider.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	loader := tableLoader(endpoint.WithRegion(settings.AWSRegion))
	table, err := loader.Load(ctx, settings.EndpointsSource)
	if err != nil {
		return err
	}
	lg.Info().
		Str("source", settings.EndpointsSource).
		Strs("services", table.Services()).
		Msg("tabela de endpoints carregada")

	resolver := endpoint.NewResolver(table, endpoint.WithLogger(lg))
	svc := transport.NewService(resolver,
		transport.WithLogger(lg),
		transport.WithMetrics(provider),
		transport.WithTimeout(settings.Timeout),
		transport.WithTableSource(loader, settings.EndpointsSource),
	)

	if settings.ReloadQueue != "" {
		client, err := sqsFactory(ctx, settings.AWSRegion)
		if err != nil {
			return err
		}
		go transport.NewSQSReloader(client, settings.ReloadQueue, svc).Start(ctx)
	}

	// Seleciona Runtime Strategy
	switch settings.Runtime {
	case "lambda":
		lambdaStarter(transport.NewLambdaHandler(svc))
		return nil
	case "local":
		return serverStarter(ctx, svc, settings.Port)
	default:
		return fmt.Errorf("runtime desconhecido: %s", settings.Runtime)
	}
}

func newSQSClient(ctx context.Context, region string) (transport.SQSClient, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar configuração AWS: %w", err)
	}
	return sqs.NewFromConfig(cfg), nil
}
