package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/storefront-debt-ledger/internal/domain/expense"
)

// MockProcessingService mocks the ProcessingService interface
type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessExpenseEvent(ctx context.Context, event *expense.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestWorkerPoolProcessingService_ProcessExpenseEvent(t *testing.T) {
	logger := newTestLogger()
	event := newEvent("25.50")

	tests := []struct {
		name          string
		setupMocks    func(m *MockProcessingService)
		expectedError error
	}{
		{
			name: "successful processing",
			setupMocks: func(m *MockProcessingService) {
				m.On("ProcessExpenseEvent", mock.Anything, mock.AnythingOfType("*expense.Event")).Return(nil).Once()
			},
			expectedError: nil,
		},
		{
			name: "processing error",
			setupMocks: func(m *MockProcessingService) {
				m.On("ProcessExpenseEvent", mock.Anything, mock.AnythingOfType("*expense.Event")).
					Return(errors.New("processing error")).Once()
			},
			expectedError: errors.New("processing error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockBaseService := &MockProcessingService{}
			workerPoolService, err := NewWorkerPoolProcessingService(
				mockBaseService,
				WorkerPoolConfig{Size: 2},
				logger,
			)
			assert.NoError(t, err)
			defer workerPoolService.Shutdown()

			tt.setupMocks(mockBaseService)

			err = workerPoolService.ProcessExpenseEvent(context.Background(), event)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}
			mockBaseService.AssertExpectations(t)
		})
	}
}

func TestWorkerPoolProcessingService_Concurrency(t *testing.T) {
	mockBaseService := &MockProcessingService{}
	workerPoolService, err := NewWorkerPoolProcessingService(
		mockBaseService,
		WorkerPoolConfig{Size: 5},
		newTestLogger(),
	)
	assert.NoError(t, err)
	defer workerPoolService.Shutdown()

	var mu sync.Mutex
	counter := 0

	mockBaseService.On("ProcessExpenseEvent", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		counter++
		mu.Unlock()
	}).Return(nil)

	numEvents := 10
	var wg sync.WaitGroup
	wg.Add(numEvents)

	for i := 0; i < numEvents; i++ {
		go func(i int) {
			defer wg.Done()

			event := &expense.Event{
				ExpenseID:          uuid.New(),
				Amount:             "10.00",
				Category:           "groceries",
				ResponsiblePartyID: "party-" + strconv.Itoa(i),
				Timestamp:          time.Now().UTC(),
			}

			err := workerPoolService.ProcessExpenseEvent(context.Background(), event)
			assert.NoError(t, err)
		}(i)
	}

	wg.Wait()

	assert.Equal(t, numEvents, counter)
	assert.True(t, workerPoolService.Running() > 0)
	assert.Equal(t, 5, workerPoolService.Capacity())
}
