package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/usecase"
)

// MockTagUseCase is a mock implementation of TagUseCase
type MockTagUseCase struct {
	mu      sync.Mutex
	runFunc func(ctx context.Context, products model.Products) []*model.ProductReport
	calls   int
}

func (m *MockTagUseCase) Run(ctx context.Context, products model.Products) []*model.ProductReport {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.runFunc != nil {
		return m.runFunc(ctx, products)
	}
	return nil
}

func (m *MockTagUseCase) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func succeededEvent(pipeline string) *model.BuildEvent {
	return &model.BuildEvent{
		ID:          "event-1",
		EventType:   "build.complete",
		Pipeline:    pipeline,
		BuildNumber: "20230101.5",
		Result:      "succeeded",
		ReceivedAt:  time.Now(),
	}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("walk did not finish within timeout")
	}
}

func TestHook_HandleBuildEvent(t *testing.T) {
	ctx := context.Background()
	products := model.Products{testProduct()}

	t.Run("starts walk for succeeded umbrella build", func(t *testing.T) {
		var got model.Products
		mock := &MockTagUseCase{runFunc: func(ctx context.Context, p model.Products) []*model.ProductReport {
			got = p
			return nil
		}}
		done := make(chan struct{})
		uc := usecase.NewHook(mock, products, "VS-Umbrella", usecase.WithWalkDone(func() { close(done) }))

		gt.NoError(t, uc.HandleBuildEvent(ctx, succeededEvent("VS-Umbrella")))
		waitDone(t, done)

		gt.Number(t, mock.Calls()).Equal(1)
		gt.Number(t, len(got)).Equal(1)
		gt.False(t, uc.Running())
	})

	t.Run("ignores other pipelines and failed builds", func(t *testing.T) {
		mock := &MockTagUseCase{}
		uc := usecase.NewHook(mock, products, "VS-Umbrella")

		gt.NoError(t, uc.HandleBuildEvent(ctx, succeededEvent("Other")))

		failed := succeededEvent("VS-Umbrella")
		failed.Result = "failed"
		gt.NoError(t, uc.HandleBuildEvent(ctx, failed))

		time.Sleep(10 * time.Millisecond)
		gt.Number(t, mock.Calls()).Equal(0)
	})

	t.Run("ignores events while a walk is running", func(t *testing.T) {
		release := make(chan struct{})
		mock := &MockTagUseCase{runFunc: func(ctx context.Context, p model.Products) []*model.ProductReport {
			<-release
			return nil
		}}
		done := make(chan struct{})
		uc := usecase.NewHook(mock, products, "VS-Umbrella", usecase.WithWalkDone(func() { close(done) }))

		gt.NoError(t, uc.HandleBuildEvent(ctx, succeededEvent("VS-Umbrella")))
		gt.True(t, uc.Running())
		gt.NoError(t, uc.HandleBuildEvent(ctx, succeededEvent("VS-Umbrella")))

		close(release)
		waitDone(t, done)
		gt.Number(t, mock.Calls()).Equal(1)
	})
}
