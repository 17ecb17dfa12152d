package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"invoicesimple/internal/backup"
	"invoicesimple/internal/invoice"
	"invoicesimple/pkg/response"
)

// maxImportSize caps an uploaded backup at 10MB.
const maxImportSize = 10 << 20

type BackupHandler struct {
	backups *backup.Service
	store   *invoice.Store
}

func NewBackupHandler(backups *backup.Service, store *invoice.Store) *BackupHandler {
	return &BackupHandler{backups: backups, store: store}
}

func (h *BackupHandler) RegisterRoutes(router *gin.RouterGroup) {
	data := router.Group("/api/data")
	{
		data.GET("/export", h.Export)
		data.POST("/import", h.Import)
		data.DELETE("/invoices", h.ClearInvoices)
		data.DELETE("", h.ClearAll)
	}
}

// Export downloads the full dataset as a JSON backup file
// @Summary      Export backup
// @Description  Serializes all invoices and settings into a downloadable JSON document
// @Tags         data
// @Produce      json
// @Success      200  {object}  backup.Document
// @Failure      500  {object}  response.Response
// @Router       /api/data/export [get]
func (h *BackupHandler) Export(c *gin.Context) {
	doc, err := h.backups.Export(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	fileName := backup.FileName(time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.JSON(http.StatusOK, doc)
}

// Import restores a previously exported backup
// @Summary      Import backup
// @Description  Replaces the stored invoices and settings with the uploaded document's contents
// @Tags         data
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.Response{data=backup.Result}
// @Failure      400  {object}  response.Response{data=backup.Result}
// @Router       /api/data/import [post]
func (h *BackupHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to read request body"))
		return
	}

	result := h.backups.Import(c.Request.Context(), data)
	// Even a rejected document may have applied its validly-typed fields;
	// rehydrate so the session reflects whatever was stored.
	h.store.Reload()

	if result.Success {
		c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
		return
	}
	c.JSON(http.StatusBadRequest, response.ErrorWithData(http.StatusBadRequest, result.Message, result))
}

// ClearInvoices deletes every saved invoice
// @Summary      Clear invoices
// @Description  Deletes the saved invoice collection; settings and the draft survive
// @Tags         data
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/data/invoices [delete]
func (h *BackupHandler) ClearInvoices(c *gin.Context) {
	if err := h.backups.ClearInvoices(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	h.store.Reload()
	c.JSON(http.StatusOK, response.Success(http.StatusOK, nil))
}

// ClearAll wipes the entire dataset
// @Summary      Clear all data
// @Description  Deletes invoices, the draft and settings; the session resets to defaults
// @Tags         data
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/data [delete]
func (h *BackupHandler) ClearAll(c *gin.Context) {
	if err := h.backups.ClearAll(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	h.store.Reload()
	c.JSON(http.StatusOK, response.Success(http.StatusOK, nil))
}
