package api

import (
	"errors"
	"net/http"

	reqdto "studio-booking/internal/handler/dto/request"
	resdto "studio-booking/internal/handler/dto/response"
	"studio-booking/internal/handler/httperr"
	"studio-booking/internal/handler/middleware"
	"studio-booking/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsCommands commands.SettingsCommands
}

func NewSettingsHandler(settingsCommands commands.SettingsCommands) *SettingsHandler {
	return &SettingsHandler{settingsCommands: settingsCommands}
}

// @Summary Get settings
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.SettingsResponse
// @Router /admin/settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	s, err := h.settingsCommands.Get(c.Request.Context())
	if err != nil {
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSettings(s))
}

// @Summary Update settings
// @Description Replace the runtime settings, auditing each changed key
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.SettingsResponse
// @Failure 422 {object} httperr.Response
// @Router /admin/settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing auth context"), "INTERNAL_ERROR", "Internal server error")
		return
	}

	var req reqdto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err, "Invalid request format")
		return
	}

	s := req.ToDomain()
	if err := h.settingsCommands.Update(c.Request.Context(), s, userID); err != nil {
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSettings(s))
}
