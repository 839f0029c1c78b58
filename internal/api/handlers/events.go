package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/card-linker/internal/models"
	"github.com/codyseavey/card-linker/internal/services"
)

// Event types posted by the gateway bridge
const (
	EventMessageCreate = "message_create"
	EventMessageUpdate = "message_update"
	EventReactionAdd   = "reaction_add"
	EventInteraction   = "interaction"
)

type EventHandler struct {
	linker *services.Linker
}

func NewEventHandler(linker *services.Linker) *EventHandler {
	return &EventHandler{linker: linker}
}

// EventRequest is the envelope the gateway bridge posts for every event it
// forwards. Exactly one of the payload fields is set, matching Type.
type EventRequest struct {
	Type         string                   `json:"type" binding:"required"`
	GuildOwnerID models.Snowflake         `json:"guild_owner_id"`
	Message      *models.Message          `json:"message,omitempty"`
	Reaction     *models.ReactionEvent    `json:"reaction,omitempty"`
	Interaction  *models.InteractionEvent `json:"interaction,omitempty"`
}

func (h *EventHandler) PostEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var err error

	switch req.Type {
	case EventMessageCreate, EventMessageUpdate:
		if req.Message == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required for " + req.Type})
			return
		}
		ev := models.MessageEvent{Message: *req.Message, GuildOwnerID: req.GuildOwnerID}
		if req.Type == EventMessageCreate {
			err = h.linker.HandleMessageCreated(ctx, ev)
		} else {
			err = h.linker.HandleMessageEdited(ctx, ev)
		}

	case EventReactionAdd:
		if req.Reaction == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reaction is required for " + req.Type})
			return
		}
		ev := *req.Reaction
		if ev.GuildOwnerID == 0 {
			ev.GuildOwnerID = req.GuildOwnerID
		}
		err = h.linker.HandleReaction(ctx, ev)

	case EventInteraction:
		if req.Interaction == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "interaction is required for " + req.Type})
			return
		}
		ev := *req.Interaction
		if ev.GuildOwnerID == 0 {
			ev.GuildOwnerID = req.GuildOwnerID
		}
		err = h.linker.HandleInteraction(ctx, ev)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event type: " + req.Type})
		return
	}

	if err != nil {
		log.Printf("Events: %s %s failed: %v", c.GetString("request_id"), req.Type, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}
