package endpoint

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gopkg.in/yaml.v3"
)

// --- Interfaces para Mocking ---

type S3Downloader interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type DynamoGetter interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// LoaderOption configura um Loader.
type LoaderOption func(*Loader)

// WithS3Client injeta o cliente S3 (útil em testes).
func WithS3Client(c S3Downloader) LoaderOption {
	return func(l *Loader) { l.s3 = c }
}

// WithDynamoClient injeta o cliente DynamoDB (útil em testes).
func WithDynamoClient(c DynamoGetter) LoaderOption {
	return func(l *Loader) { l.dynamo = c }
}

// WithRegion define a região usada para criar os clientes AWS.
func WithRegion(region string) LoaderOption {
	return func(l *Loader) { l.region = region }
}

// Loader carrega a tabela de endpoints de um arquivo local, S3 ou DynamoDB.
type Loader struct {
	s3     S3Downloader
	dynamo DynamoGetter
	region string
}

// NewLoader cria um novo Loader. Clientes AWS não injetados são criados sob
// demanda com a configuração padrão do SDK.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load detecta o esquema da fonte e carrega a tabela.
// Fonte vazia devolve a DefaultTable.
//
// Fontes aceitas:
//   - "endpoints.yaml" ou "file://endpoints.json"
//   - "s3://bucket/chave.yaml"
//   - "dynamodb://tabela/chave?col=endpoints&pk=id"
func (l *Loader) Load(ctx context.Context, source string) (Table, error) {
	if source == "" {
		return DefaultTable(), nil
	}

	var rawData []byte
	var err error

	switch {
	case strings.HasPrefix(source, "s3://"):
		var client S3Downloader
		if client, err = l.s3Client(ctx); err == nil {
			rawData, err = loadFromS3(ctx, client, source)
		}

	case strings.HasPrefix(source, "dynamodb://"):
		var client DynamoGetter
		if client, err = l.dynamoClient(ctx); err == nil {
			rawData, err = loadFromDynamoDB(ctx, client, source)
		}

	default:
		rawData, err = os.ReadFile(strings.TrimPrefix(source, "file://"))
	}

	if err != nil {
		return nil, fmt.Errorf("falha leitura endpoints (%s): %w", source, err)
	}

	return Parse(rawData)
}

// Parse interpreta um documento YAML ou JSON e valida a tabela resultante.
func Parse(data []byte) (Table, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("documento de endpoints malformado: %w", err)
	}

	table := make(Table, len(raw))
	for svc, envs := range raw {
		cp := make(map[Environment]string, len(envs))
		for env, uri := range envs {
			cp[Environment(env)] = uri
		}
		table[svc] = cp
	}

	// Validate antes de normalizar: nomes que só diferem no case são erro
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table.Clone(), nil
}

func (l *Loader) awsConfig(ctx context.Context) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{}
	if l.region != "" {
		opts = append(opts, config.WithRegion(l.region))
	}
	return config.LoadDefaultConfig(ctx, opts...)
}

func (l *Loader) s3Client(ctx context.Context) (S3Downloader, error) {
	if l.s3 != nil {
		return l.s3, nil
	}
	cfg, err := l.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

func (l *Loader) dynamoClient(ctx context.Context) (DynamoGetter, error) {
	if l.dynamo != nil {
		return l.dynamo, nil
	}
	cfg, err := l.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg), nil
}

func loadFromS3(ctx context.Context, client S3Downloader, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL S3 inválida: %w", err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("URL S3 inválida: bucket e chave são obrigatórios")
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func loadFromDynamoDB(ctx context.Context, client DynamoGetter, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL DynamoDB inválida: %w", err)
	}

	tableName := u.Host
	pkValue := strings.TrimPrefix(u.Path, "/")

	colName := u.Query().Get("col")
	if colName == "" {
		colName = "endpoints"
	}

	pkName := u.Query().Get("pk")
	if pkName == "" {
		pkName = "id"
	}

	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(tableName),
		Key: map[string]types.AttributeValue{
			pkName: &types.AttributeValueMemberS{Value: pkValue},
		},
	})
	if err != nil {
		return nil, err
	}

	if out.Item == nil {
		return nil, fmt.Errorf("item '%s' não encontrado no DynamoDB", pkValue)
	}

	var itemMap map[string]interface{}
	if err := attributevalue.UnmarshalMap(out.Item, &itemMap); err != nil {
		return nil, err
	}

	content, ok := itemMap[colName].(string)
	if !ok {
		return nil, fmt.Errorf("coluna '%s' inválida ou vazia no DynamoDB", colName)
	}

	return []byte(content), nil
}
