package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"hostel-order-backend/internal/model"
	"hostel-order-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers for sending new-order notifications.
type WorkerPool struct {
	size    int
	jobs    chan string
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	slog.Info("notification worker started", "worker", id)
	for {
		select {
		case orderID := <-wp.jobs:
			slog.Info("processing order notification", "worker", id, "order_id", orderID)
			wp.sendNotificationsForOrder(ctx, orderID)
		case <-ctx.Done():
			slog.Info("notification worker shutting down", "worker", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(orderID string) {
	wp.jobs <- orderID
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan string {
	return wp.jobs
}

// sendNotificationsForOrder fetches the hostel's subscriptions and notifies
// each of them about the new order.
func (wp *WorkerPool) sendNotificationsForOrder(ctx context.Context, orderID string) {
	order, err := wp.store.GetOrder(ctx, orderID)
	if err != nil {
		slog.Error("failed to fetch order for notification", "order_id", orderID, "error", err)
		return
	}

	subscriptions, err := wp.store.ListPushSubscriptionsByHostel(ctx, order.HostelID)
	if err != nil {
		slog.Error("failed to fetch subscriptions", "hostel_id", order.HostelID, "error", err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	slog.Info("sending notifications", "count", len(subscriptions), "order_id", orderID)

	message := fmt.Sprintf("New group order %q is open in your hostel. Join before the timer runs out!", order.Name)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		slog.Error("failed to send notification", "endpoint", sub.Endpoint, "error", err)
		return
	}
	defer resp.Body.Close()

	// Push services answer 410 Gone once the browser drops the subscription.
	if resp.StatusCode == http.StatusGone {
		slog.Info("deleting expired subscription", "endpoint", sub.Endpoint)
		if err := wp.store.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
			slog.Error("failed to delete expired subscription", "endpoint", sub.Endpoint, "error", err)
		}
	}
}
