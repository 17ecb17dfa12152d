package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicesimple/internal/invoice"
	"invoicesimple/pkg/response"
)

type SettingsHandler struct {
	store *invoice.Store
}

func NewSettingsHandler(store *invoice.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/api/settings")
	{
		settings.GET("", h.GetSettings)
		settings.PATCH("", h.UpdateSettings)
	}
}

// GetSettings returns the template settings
// @Summary      Get settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  response.Response{data=model.InvoiceSettings}
// @Router       /api/settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.store.Settings()))
}

// UpdateSettings merges a partial update into the settings
// @Summary      Update settings
// @Description  Shallow-merges the provided fields into the settings record; omitted fields are untouched
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        payload  body      invoice.SettingsUpdate  true  "Fields to update"
// @Success      200      {object}  response.Response{data=model.InvoiceSettings}
// @Failure      400      {object}  response.Response
// @Router       /api/settings [patch]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var update invoice.SettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	h.store.UpdateSettings(update)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.store.Settings()))
}
