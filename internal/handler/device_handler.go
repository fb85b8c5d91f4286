package handler

import (
	"net/http"

	"github.com/emanuuele/girls-chat-api/internal/services"
	"github.com/emanuuele/girls-chat-api/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	service *services.PushService
}

func NewDeviceHandler(service *services.PushService) *DeviceHandler {
	return &DeviceHandler{service: service}
}

// Register stores a push token for the caller's device.
func (h *DeviceHandler) Register(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.service.RegisterToken(c.Request.Context(), userID, req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// Revoke drops a push token, e.g. on logout.
func (h *DeviceHandler) Revoke(c *gin.Context) {
	if _, ok := services.UserIDFromContext(c.Request.Context()); !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.RevokeDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.service.RevokeToken(c.Request.Context(), req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
