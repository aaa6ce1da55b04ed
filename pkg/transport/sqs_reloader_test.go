package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockSQSClient struct {
	mock.Mock
}

func (m *MockSQSClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockSQSClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, params)
	return nil, args.Error(1)
}

type mockReloader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockReloader) Reload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.err
}

func (m *mockReloader) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

const queueURL = "https://sqs.us-east-1.amazonaws.com/123/endpoints-reload"

func reloadMessage() *sqs.ReceiveMessageOutput {
	return &sqs.ReceiveMessageOutput{
		Messages: []types.Message{
			{
				Body:          stringPtr(`{"action":"reload"}`),
				ReceiptHandle: stringPtr("handle_123"),
			},
		},
	}
}

func TestSQSReloader_ReloadsAndDeletes(t *testing.T) {
	mockSQS := new(MockSQSClient)
	reloader := &mockReloader{}

	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(reloadMessage(), nil).Once()
	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{}, nil).Maybe()
	mockSQS.On("DeleteMessage", mock.Anything, mock.Anything).Return(nil, nil)

	r := NewSQSReloader(mockSQS, queueURL, reloader)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return reloader.Calls() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done

	mockSQS.AssertCalled(t, "DeleteMessage", mock.Anything, &sqs.DeleteMessageInput{
		QueueUrl:      stringPtr(queueURL),
		ReceiptHandle: stringPtr("handle_123"),
	})
}

func TestSQSReloader_KeepsMessageOnFailure(t *testing.T) {
	mockSQS := new(MockSQSClient)
	reloader := &mockReloader{err: errors.New("fonte indisponível")}

	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(reloadMessage(), nil).Once()
	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{}, nil).Maybe()

	r := NewSQSReloader(mockSQS, queueURL, reloader)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return reloader.Calls() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done

	mockSQS.AssertNotCalled(t, "DeleteMessage", mock.Anything, mock.Anything)
}

func TestSQSReloader_RetriesAfterError(t *testing.T) {
	mockSQS := new(MockSQSClient)
	reloader := &mockReloader{}

	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()
	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(reloadMessage(), nil).Once()
	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{}, nil).Maybe()
	mockSQS.On("DeleteMessage", mock.Anything, mock.Anything).Return(nil, nil)

	r := NewSQSReloader(mockSQS, queueURL, reloader)
	r.retryDelay = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return reloader.Calls() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done
}

func TestSQSReloader_NoQueue(t *testing.T) {
	mockSQS := new(MockSQSClient)
	r := NewSQSReloader(mockSQS, "", &mockReloader{})

	// retorna imediatamente
	r.Start(context.Background())
	mockSQS.AssertNotCalled(t, "ReceiveMessage", mock.Anything, mock.Anything)
}

func TestService_ImplementsReloader(t *testing.T) {
	var _ Reloader = newTestService()
}

func stringPtr(s string) *string {
	return &s
}
