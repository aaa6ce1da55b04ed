package injector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Regex para capturar padrões ${tipo.chave}
// Ex: ${env.CPAAS_API_KEY}, ${ssm./cpaas/api_key}, ${secret.cpaas/app#api_key}
var pattern = regexp.MustCompile(`\$\{(env|ssm|secret)\.([^}]+)\}`)

// Interfaces para abstrair o SDK da AWS (Permite Mocking)
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Option configura o Injector.
type Option func(*Injector)

func WithSSMClient(c SSMClient) Option {
	return func(i *Injector) { i.ssm = c }
}

func WithSecretsClient(c SecretsClient) Option {
	return func(i *Injector) { i.secrets = c }
}

func WithRegion(region string) Option {
	return func(i *Injector) { i.region = region }
}

// Injector resolve referências ${env.X}, ${ssm.X} e ${secret.X} em campos string.
type Injector struct {
	ssm     SSMClient
	secrets SecretsClient
	region  string

	once   sync.Once
	awsCfg aws.Config
	awsErr error
}

func New(opts ...Option) *Injector {
	i := &Injector{}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inject percorre target (ponteiro para struct) e interpola todos os campos
// string, inclusive em structs aninhadas, mapas e slices.
func (i *Injector) Inject(ctx context.Context, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target deve ser um ponteiro para struct não nulo")
	}
	return i.injectRecursive(ctx, v.Elem())
}

func (i *Injector) injectRecursive(ctx context.Context, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		for k := 0; k < v.NumField(); k++ {
			field := v.Field(k)
			if !field.CanSet() {
				continue
			}
			if err := i.injectRecursive(ctx, field); err != nil {
				return fmt.Errorf("%s: %w", v.Type().Field(k).Name, err)
			}
		}

	case reflect.String:
		if !v.CanSet() {
			return nil
		}
		newValue, err := i.Interpolate(ctx, v.String())
		if err != nil {
			return err
		}
		v.SetString(newValue)

	case reflect.Map:
		if v.IsNil() || v.Type().Key().Kind() != reflect.String {
			return nil
		}
		return i.injectMap(ctx, v)

	case reflect.Ptr:
		if !v.IsNil() {
			return i.injectRecursive(ctx, v.Elem())
		}

	case reflect.Slice:
		for j := 0; j < v.Len(); j++ {
			if err := i.injectRecursive(ctx, v.Index(j)); err != nil {
				return err
			}
		}
	}
	return nil
}

// injectMap lida com mapas, cujos valores não são endereçáveis
func (i *Injector) injectMap(ctx context.Context, v reflect.Value) error {
	iter := v.MapRange()
	updates := make(map[string]reflect.Value)

	for iter.Next() {
		elem := iter.Value()
		if elem.Kind() == reflect.Interface {
			elem = elem.Elem()
		}
		if !elem.IsValid() {
			continue
		}

		switch elem.Kind() {
		case reflect.String:
			newVal, err := i.Interpolate(ctx, elem.String())
			if err != nil {
				return err
			}
			updates[iter.Key().String()] = reflect.ValueOf(newVal).Convert(elem.Type())
		case reflect.Map:
			if err := i.injectRecursive(ctx, elem); err != nil {
				return err
			}
		}
	}

	for k, val := range updates {
		key := reflect.ValueOf(k).Convert(v.Type().Key())
		if v.Type().Elem().Kind() != reflect.Interface {
			val = val.Convert(v.Type().Elem())
		}
		v.SetMapIndex(key, val)
	}
	return nil
}

// Interpolate substitui as referências de uma string.
// Em caso de erro a referência é mantida e o primeiro erro é retornado.
func (i *Injector) Interpolate(ctx context.Context, input string) (string, error) {
	if !strings.Contains(input, "${") {
		return input, nil
	}

	var firstErr error
	result := pattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := pattern.FindStringSubmatch(match)
		sourceType, key := sub[1], sub[2]

		val, err := i.fetchValue(ctx, sourceType, key)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return match
		}
		return val
	})

	return result, firstErr
}

// fetchValue centraliza a busca de dados
func (i *Injector) fetchValue(ctx context.Context, sourceType, key string) (string, error) {
	switch sourceType {
	case "env":
		// Variável não encontrada resulta em vazio
		return os.Getenv(key), nil

	case "ssm":
		client, err := i.ssmClient(ctx)
		if err != nil {
			return "", err
		}
		return getParameter(ctx, client, key)

	case "secret":
		client, err := i.secretsClient(ctx)
		if err != nil {
			return "", err
		}
		id, field, _ := strings.Cut(key, "#")
		return getSecret(ctx, client, id, field)
	}

	return "", fmt.Errorf("fonte desconhecida: %s", sourceType)
}

func (i *Injector) loadAWSConfig(ctx context.Context) (aws.Config, error) {
	i.once.Do(func() {
		region := i.region
		if region == "" {
			region = os.Getenv("AWS_REGION")
		}
		opts := []func(*awsconfig.LoadOptions) error{}
		if region != "" {
			opts = append(opts, awsconfig.WithRegion(region))
		}
		i.awsCfg, i.awsErr = awsconfig.LoadDefaultConfig(ctx, opts...)
	})
	return i.awsCfg, i.awsErr
}

func (i *Injector) ssmClient(ctx context.Context) (SSMClient, error) {
	if i.ssm != nil {
		return i.ssm, nil
	}
	cfg, err := i.loadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	return ssm.NewFromConfig(cfg), nil
}

func (i *Injector) secretsClient(ctx context.Context) (SecretsClient, error) {
	if i.secrets != nil {
		return i.secrets, nil
	}
	cfg, err := i.loadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

func getParameter(ctx context.Context, client SSMClient, path string) (string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(path),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("erro no SSM GetParameter: %w", err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parâmetro SSM '%s' sem valor", path)
	}
	return *out.Parameter.Value, nil
}

var errSecretField = errors.New("campo não encontrado no segredo")

// getSecret devolve o segredo inteiro ou, com field, um campo do JSON.
func getSecret(ctx context.Context, client SecretsClient, secretID, field string) (string, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("erro no SecretsManager: %w", err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("segredo '%s' sem SecretString", secretID)
	}

	val := *out.SecretString
	if field == "" {
		return val, nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return "", fmt.Errorf("segredo '%s' não é JSON: %w", secretID, err)
	}
	fv, ok := data[field]
	if !ok {
		return "", fmt.Errorf("%w: %s#%s", errSecretField, secretID, field)
	}
	return fmt.Sprintf("%v", fv), nil
}
