package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hostel-order-backend/internal/live"
	"hostel-order-backend/internal/model"
	"hostel-order-backend/internal/mw"
	"hostel-order-backend/internal/store"
)

type addParticipantRequest struct {
	Name string `json:"name"`
	Room string `json:"room"`
}

// AddParticipant handles POST /api/orders/:order_id/participants.
func (h *Handler) AddParticipant(c *gin.Context) {
	orderID := c.Param("order_id")

	var req addParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	room := strings.TrimSpace(req.Room)
	if name == "" || room == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please fill all fields"})
		return
	}

	if _, err := h.store.GetOrder(c.Request.Context(), orderID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve order"})
		}
		return
	}

	claims := mw.SessionClaims(c)
	participant := &model.Participant{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Name:      name,
		Room:      room,
		CreatorID: claims.UserID,
	}

	if err := h.store.CreateParticipant(c.Request.Context(), participant); err != nil {
		slog.Error("failed to add participant", "order_id", orderID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add participant"})
		return
	}

	h.hub.Publish(live.ParticipantsTopic(orderID), live.KindParticipantAdded, participant.ID)

	c.JSON(http.StatusCreated, participant)
}

type addItemRequest struct {
	Name     string      `json:"name"`
	Quantity json.Number `json:"quantity"`
	Price    json.Number `json:"price"`
}

// AddItem handles POST /api/orders/:order_id/participants/:participant_id/items.
// All fields are required and the numeric ones must parse; nothing is
// written otherwise.
func (h *Handler) AddItem(c *gin.Context) {
	orderID := c.Param("order_id")
	participantID := c.Param("participant_id")

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	quantity, qtyErr := req.Quantity.Float64()
	price, priceErr := req.Price.Float64()
	if name == "" || qtyErr != nil || priceErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please fill all fields"})
		return
	}

	if _, err := h.store.GetParticipant(c.Request.Context(), orderID, participantID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "participant not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve participant"})
		}
		return
	}

	item := &model.Item{
		ID:            uuid.NewString(),
		ParticipantID: participantID,
		Name:          name,
		Quantity:      quantity,
		Price:         price,
	}

	if err := h.store.CreateItem(c.Request.Context(), item); err != nil {
		slog.Error("failed to add item", "participant_id", participantID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add item"})
		return
	}

	h.hub.Publish(live.ItemsTopic(participantID), live.KindItemAdded, item.ID)

	c.JSON(http.StatusCreated, item)
}
