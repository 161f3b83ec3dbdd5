package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"hostel-order-backend/internal/live"
	"hostel-order-backend/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// countdownRefresh is how often board snapshots are re-sent so the
// displayed countdowns stay honest between order events.
const countdownRefresh = 15 * time.Second

// watchClose consumes the client side of the connection and cancels the
// stream when the peer goes away. Clients never send data on these
// streams.
func watchClose(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// BoardWS handles GET /api/hostels/:hostel_id/orders/ws: a live stream of
// the hostel's pending-order board.
func (h *Handler) BoardWS(c *gin.Context) {
	hostelID := c.Param("hostel_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go watchClose(conn, cancel)

	sub := h.hub.Subscribe(live.OrdersTopic(hostelID))
	defer sub.Cancel()

	ticker := time.NewTicker(countdownRefresh)
	defer ticker.Stop()

	send := func() bool {
		board, err := h.pendingBoard(c, hostelID)
		if err != nil {
			slog.Error("failed to build board snapshot", "hostel_id", hostelID, "error", err)
			return true
		}
		return conn.WriteJSON(board) == nil
	}

	if !send() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Events():
			if !ok || !send() {
				return
			}
		case <-ticker.C:
			if !send() {
				return
			}
		}
	}
}

// OrderWS handles GET /api/orders/:order_id/ws: a live stream of the
// order's derived summary. Each connection owns one aggregator; closing
// the connection tears down every subscription the aggregator opened.
func (h *Handler) OrderWS(c *gin.Context) {
	orderID := c.Param("order_id")

	if _, err := h.store.GetOrder(c.Request.Context(), orderID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve order"})
		}
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go watchClose(conn, cancel)

	agg := live.NewAggregator(h.store, h.hub, orderID)
	go agg.Run(ctx)

	for summary := range agg.Updates() {
		if err := conn.WriteJSON(summary); err != nil {
			return
		}
	}
}

// ChatWS handles GET /api/orders/:order_id/messages/ws: a live stream of
// the order's chat, re-sent in full (ascending creation order, display
// names resolved) on every new message.
func (h *Handler) ChatWS(c *gin.Context) {
	orderID := c.Param("order_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go watchClose(conn, cancel)

	sub := h.hub.Subscribe(live.MessagesTopic(orderID))
	defer sub.Cancel()

	send := func() bool {
		messages, err := h.store.ListMessages(ctx, orderID)
		if err != nil {
			slog.Error("failed to list messages", "order_id", orderID, "error", err)
			return true
		}
		return conn.WriteJSON(h.resolveMessages(ctx, messages)) == nil
	}

	if !send() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Events():
			if !ok || !send() {
				return
			}
		}
	}
}
