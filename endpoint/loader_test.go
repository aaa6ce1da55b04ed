package endpoint

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockS3Loader struct {
	GetObjectFunc func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

func (m *MockS3Loader) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return m.GetObjectFunc(ctx, params, optFns...)
}

type MockDynamoLoader struct {
	GetItemFunc func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

func (m *MockDynamoLoader) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return m.GetItemFunc(ctx, params, optFns...)
}

const jsonTable = `{
  "IDENTITY": {
    "dev": "https://cpaas.star2star.net/identity",
    "test": "https://cpaas.star2star.net/identity",
    "stage": "https://cpaas.star2star.net/identity",
    "prod": "https://cpaas.star2star.com/api/identity"
  },
  "messaging": {
    "dev": "https://cpaas.star2star.net/messaging",
    "test": "https://cpaas.star2star.net/messaging",
    "stage": "https://cpaas.star2star.net/messaging",
    "prod": "https://cpaas.star2star.com/api/messaging"
  }
}`

const yamlTable = `
OBJECTS:
  dev: http://localhost:9000/objects
  test: http://localhost:9000/objects
  stage: http://localhost:9000/objects
  prod: https://cpaas.star2star.com/api/objects
`

// --- Testes ---

func TestLoader_Load_Default(t *testing.T) {
	table, err := NewLoader().Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTable(), table)
}

func TestLoader_Load_LocalJSON(t *testing.T) {
	tmpFile, _ := os.CreateTemp("", "endpoints_*.json")
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(jsonTable); err != nil {
		t.Fatalf("Erro ao escrever arquivo: %v", err)
	}
	tmpFile.Close()

	table, err := NewLoader().Load(context.Background(), "file://"+tmpFile.Name())
	require.NoError(t, err)

	assert.Equal(t, "https://cpaas.star2star.com/api/identity", table["IDENTITY"][Prod])
	assert.Contains(t, table, "MESSAGING", "serviços são normalizados para maiúsculas")
}

func TestLoader_Load_LocalMissing(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), "/nao/existe/endpoints.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "falha leitura endpoints")
}

func TestLoader_Load_S3(t *testing.T) {
	mock := &MockS3Loader{
		GetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			assert.Equal(t, "my-bucket", *params.Bucket)
			assert.Equal(t, "cfg/endpoints.yaml", *params.Key)
			return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(yamlTable))}, nil
		},
	}

	table, err := NewLoader(WithS3Client(mock)).Load(context.Background(), "s3://my-bucket/cfg/endpoints.yaml")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/objects", table["OBJECTS"][Dev])
}

func TestLoader_Load_S3Error(t *testing.T) {
	mock := &MockS3Loader{
		GetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			return nil, errors.New("access denied")
		},
	}

	_, err := NewLoader(WithS3Client(mock)).Load(context.Background(), "s3://my-bucket/endpoints.yaml")
	assert.ErrorContains(t, err, "access denied")

	_, err = NewLoader(WithS3Client(mock)).Load(context.Background(), "s3://my-bucket")
	assert.ErrorContains(t, err, "bucket e chave")
}

func TestLoader_Load_DynamoDB(t *testing.T) {
	mock := &MockDynamoLoader{
		GetItemFunc: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			assert.Equal(t, "configs", *params.TableName)
			key, ok := params.Key["name"].(*types.AttributeValueMemberS)
			require.True(t, ok)
			assert.Equal(t, "cpaas", key.Value)

			return &dynamodb.GetItemOutput{
				Item: map[string]types.AttributeValue{
					"name": &types.AttributeValueMemberS{Value: "cpaas"},
					"doc":  &types.AttributeValueMemberS{Value: yamlTable},
				},
			}, nil
		},
	}

	table, err := NewLoader(WithDynamoClient(mock)).Load(context.Background(), "dynamodb://configs/cpaas?col=doc&pk=name")
	require.NoError(t, err)
	assert.Equal(t, "https://cpaas.star2star.com/api/objects", table["OBJECTS"][Prod])
}

func TestLoader_Load_DynamoDBNotFound(t *testing.T) {
	mock := &MockDynamoLoader{
		GetItemFunc: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			return &dynamodb.GetItemOutput{}, nil
		},
	}

	_, err := NewLoader(WithDynamoClient(mock)).Load(context.Background(), "dynamodb://configs/missing")
	assert.ErrorContains(t, err, "não encontrado")
}

func TestLoader_Load_DynamoDBWrongColumn(t *testing.T) {
	mock := &MockDynamoLoader{
		GetItemFunc: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			return &dynamodb.GetItemOutput{
				Item: map[string]types.AttributeValue{
					"id": &types.AttributeValueMemberS{Value: "cpaas"},
				},
			}, nil
		},
	}

	_, err := NewLoader(WithDynamoClient(mock)).Load(context.Background(), "dynamodb://configs/cpaas")
	assert.ErrorContains(t, err, "coluna 'endpoints'")
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("IDENTITY: [1, 2]"))
	assert.ErrorContains(t, err, "malformado")

	_, err = Parse([]byte("IDENTITY:\n  dev: nope\n"))
	assert.ErrorContains(t, err, "tabela de endpoints inválida")
}

func TestParse_DuplicateServiceByCase(t *testing.T) {
	doc := `
identity: {dev: "http://a", test: "http://a", stage: "http://a", prod: "http://a"}
IDENTITY: {dev: "http://b", test: "http://b", stage: "http://b", prod: "http://b"}
`
	_, err := Parse([]byte(doc))
	assert.ErrorContains(t, err, "serviço duplicado")
}

func TestParse_NormalizesServiceNames(t *testing.T) {
	table, err := Parse([]byte(`identity: {dev: "http://a", test: "http://a", stage: "http://a", prod: "http://a"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"IDENTITY"}, table.Services())
}
