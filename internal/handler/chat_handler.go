package handler

import (
	"net/http"
	"strconv"

	"github.com/emanuuele/girls-chat-api/internal/commands"
	"github.com/emanuuele/girls-chat-api/internal/services"
	"github.com/emanuuele/girls-chat-api/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	service *services.ChatService
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Create makes a chat between the caller and another user. An existing chat
// between the pair is a conflict.
func (h *ChatHandler) Create(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	created, err := h.service.CreateChat(c.Request.Context(), commands.CreateChatCommand{
		HostID:        userID,
		ParticipantID: req.ParticipantID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromChat(created)))
}

// Resolve returns the chat with another user, creating it when missing.
func (h *ChatHandler) Resolve(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	otherID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_REQUEST"))
		return
	}

	resolved, err := h.service.ResolveOrCreateChat(c.Request.Context(), userID, otherID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromChat(resolved)))
}

// List returns the caller's chats, most recent activity first.
func (h *ChatHandler) List(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	summaries, err := h.service.GetUserChats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	dtos := make([]httpdto.ChatDTO, 0, len(summaries))
	for _, s := range summaries {
		dto := httpdto.FromChat(s.Chat)
		dto.UnseenCount = s.UnseenCount
		if s.OtherParticipant.ID != 0 {
			other := httpdto.FromUser(s.OtherParticipant)
			dto.OtherParticipant = &other
		}
		dtos = append(dtos, dto)
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(dtos))
}

// Show returns one chat the caller belongs to.
func (h *ChatHandler) Show(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	chatID, err := strconv.ParseInt(c.Param("chatId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid chat id", "INVALID_REQUEST"))
		return
	}

	summary, err := h.service.ShowChat(c.Request.Context(), chatID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	dto := httpdto.FromChat(summary.Chat)
	dto.UnseenCount = summary.UnseenCount
	if summary.OtherParticipant.ID != 0 {
		other := httpdto.FromUser(summary.OtherParticipant)
		dto.OtherParticipant = &other
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(dto))
}
