package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hostel-order-backend/internal/model"
	"hostel-order-backend/internal/store"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func newTestStore(t *testing.T) store.Store {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = gdb.AutoMigrate(
		&model.Order{},
		&model.PushSubscription{},
	)
	require.NoError(t, err)

	return store.NewGormStore(gdb)
}

func TestWorkerPool_Dispatch(t *testing.T) {
	wp := NewWorkerPool(1, newTestStore(t), &webpush.Options{})

	wp.Dispatch("order-123")

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "order-123", job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	order := &model.Order{
		ID:               "order-1",
		Name:             "Midnight Maggi Run",
		Status:           model.OrderStatusPending,
		TimeLimitMinutes: 30,
		HostelID:         "godavari",
	}
	require.NoError(t, s.CreateOrder(ctx, order))

	require.NoError(t, s.UpsertPushSubscription(ctx, &model.PushSubscription{
		Endpoint: "https://example.com/push",
		P256DH:   "test_p256dh",
		Auth:     "test_auth",
		HostelID: "godavari",
	}))
	// A subscription for another hostel must not be notified.
	require.NoError(t, s.UpsertPushSubscription(ctx, &model.PushSubscription{
		Endpoint: "https://example.com/other",
		P256DH:   "other_p256dh",
		Auth:     "other_auth",
		HostelID: "krishna",
	}))

	t.Run("notifies only the order's hostel", func(t *testing.T) {
		wp := NewWorkerPool(1, s, &webpush.Options{})

		var wg sync.WaitGroup
		wg.Add(1)
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Contains(t, string(payload), "Midnight Maggi Run")
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		workerCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		wp.Start(workerCtx)

		wp.Dispatch(order.ID)
		wg.Wait()
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		wp := NewWorkerPool(1, s, &webpush.Options{})

		var wg sync.WaitGroup
		wg.Add(1)
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				defer wg.Done()
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		workerCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		wp.Start(workerCtx)

		wp.Dispatch(order.ID)
		wg.Wait()

		// The delete runs after the sender returns; poll briefly.
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if _, err := s.GetPushSubscription(ctx, "https://example.com/push"); errors.Is(err, store.ErrNotFound) {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Fatal("expired subscription was not deleted")
	})

	t.Run("unknown order sends nothing", func(t *testing.T) {
		wp := NewWorkerPool(1, s, &webpush.Options{})
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				t.Error("sender must not be called for an unknown order")
				return nil, nil
			},
		}

		workerCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		wp.Start(workerCtx)

		wp.Dispatch("no-such-order")
		time.Sleep(100 * time.Millisecond)
	})
}
