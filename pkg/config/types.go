package config

import "time"

// Settings reúne a configuração do toolkit, carregada de variáveis de ambiente.
type Settings struct {
	// Environment é o ambiente CPaaS (dev, test, stage, prod).
	Environment string `env:"CPAAS_ENV" envDefault:"prod"`
	// APIKey é a application-key enviada em todas as chamadas.
	// Aceita referências como ${secret.cpaas/app#api_key} ou ${ssm./cpaas/api_key}.
	APIKey string `env:"CPAAS_API_KEY"`
	// EndpointsSource indica de onde carregar a tabela de endpoints.
	// Vazio usa a tabela embutida. ReloadQueue é a fila SQS que dispara a recarga.
	EndpointsSource string        `env:"CPAAS_ENDPOINTS"`
	ReloadQueue     string        `env:"CPAAS_RELOAD_QUEUE"`
	Timeout         time.Duration `env:"CPAAS_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	Runtime         string        `env:"CPAAS_RUNTIME" envDefault:"local" validate:"oneof=local lambda"`
	Port            int           `env:"PORT" envDefault:"8080" validate:"gte=0,lt=65536"`
	AWSRegion       string        `env:"AWS_REGION"`
	Logging         LoggingConf
	Metrics         MetricsConf
}

type LoggingConf struct {
	Enabled bool   `env:"LOG_ENABLED" envDefault:"true"`
	Level   string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error"`
	Format  string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf
}

type DatadogConf struct {
	Enabled   bool   `env:"DD_ENABLED" envDefault:"false"`
	Addr      string `env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `env:"DD_NAMESPACE" envDefault:"cpaas."`
}
