package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicesimple/internal/invoice"
	"invoicesimple/internal/schedule"
	"invoicesimple/pkg/pagination"
	"invoicesimple/pkg/response"
)

type InvoiceHandler struct {
	store *invoice.Store
}

func NewInvoiceHandler(store *invoice.Store) *InvoiceHandler {
	return &InvoiceHandler{store: store}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices")
	{
		invoices.GET("", h.ListInvoices)
		invoices.POST("", h.CreateInvoice)
		invoices.GET("/stats", h.GetStats)
		invoices.PUT("/:id/select", h.SelectInvoice)
		invoices.PUT("/:id/paid", h.MarkAsPaid)
		invoices.DELETE("/:id", h.DeleteInvoice)
	}

	draft := router.Group("/api/invoices/current")
	{
		draft.GET("", h.GetCurrentInvoice)
		draft.PATCH("", h.UpdateCurrentInvoice)
		draft.POST("/save", h.SaveInvoice)
		draft.GET("/totals", h.GetTotals)
		draft.POST("/items", h.AddItem)
		draft.PATCH("/items/:itemId", h.UpdateItem)
		draft.DELETE("/items/:itemId", h.RemoveItem)
		draft.POST("/schedule", h.CreateSchedule)
		draft.GET("/schedule", h.GetSchedule)
		draft.POST("/pdf", h.GeneratePDF)
		draft.POST("/email", h.EmailInvoice)
	}

	workspace := router.Group("/api/workspace")
	{
		workspace.GET("", h.GetWorkspace)
		workspace.PUT("/view", h.SetView)
		workspace.PUT("/filter", h.SetFilter)
		workspace.PUT("/sort", h.SetSort)
		workspace.PUT("/search", h.SetSearch)
	}
}

// ListInvoices returns the filtered, sorted invoice history
// @Summary      List invoices
// @Description  Returns the saved invoices matching the active filter, search term and sort, paginated
// @Tags         invoices
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	params := pagination.Parse(c)

	filtered := h.store.Filtered()
	total := len(filtered)
	start, end := params.Bounds(total)

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"invoices": filtered[start:end],
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// CreateInvoice starts a fresh draft
// @Summary      Create invoice
// @Description  Replaces the current draft with a fresh invoice and switches to the edit view
// @Tags         invoices
// @Produce      json
// @Success      201  {object}  response.Response{data=model.Invoice}
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	h.store.CreateNewInvoice()
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, h.store.CurrentInvoice()))
}

// GetStats returns dashboard aggregates
// @Summary      Invoice statistics
// @Description  Returns counts and amount totals by status across the saved collection
// @Tags         invoices
// @Produce      json
// @Success      200  {object}  response.Response{data=invoice.DashboardStats}
// @Router       /api/invoices/stats [get]
func (h *InvoiceHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.store.Stats()))
}

// SelectInvoice loads a saved invoice into the draft
// @Summary      Select invoice
// @Description  Loads the saved invoice as the current draft and switches to the edit view
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=model.Invoice}
// @Router       /api/invoices/{id}/select [put]
func (h *InvoiceHandler) SelectInvoice(c *gin.Context) {
	h.store.SelectInvoice(c.Param("id"))
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.store.CurrentInvoice()))
}

// MarkAsPaid marks a saved invoice as paid
// @Summary      Mark invoice paid
// @Description  Sets the saved invoice's status to paid
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Router       /api/invoices/{id}/paid [put]
func (h *InvoiceHandler) MarkAsPaid(c *gin.Context) {
	h.store.MarkAsPaid(c.Param("id"))
	c.JSON(http.StatusOK, response.Success(http.StatusOK, nil))
}

// DeleteInvoice removes a saved invoice
// @Summary      Delete invoice
// @Description  Removes the saved invoice; a matching draft resets to a fresh default
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	h.store.DeleteInvoice(c.Param("id"))
	c.JSON(http.StatusOK, response.Success(http.StatusOK, nil))
}

// GetCurrentInvoice returns the draft under edit
// @Summary      Get current draft
// @Tags         draft
// @Produce      json
// @Success      200  {object}  response.Response{data=model.Invoice}
// @Router       /api/invoices/current [get]
func (h *InvoiceHandler) GetCurrentInvoice(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.store.CurrentInvoice()))
}

// UpdateCurrentInvoice merges a partial update into the draft
// @Summary      Update current draft
// @Description  Shallow-merges the provided fields into the draft; omitted fields are untouched
// @Tags         draft
// @Accept       json
// @Produce      json
// @Param        payload  body      invoice.InvoiceUpdate  true  "Fields to update"
// @Success      200      {object}  response.Response{data=model.Invoice}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/current [patch]
func (h *InvoiceHandler) UpdateCurrentInvoice(c *gin.Context) {
	var update invoice.InvoiceUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	h.store.UpdateInvoice(update)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.store.CurrentInvoice()))
}

// SaveInvoice commits the draft into the collection
// @Summary      Save draft
// @Description  Upserts the draft into the saved collection and switches to the dashboard view
// @Tags         draft
// @Produce      json
// @Success      200  {object}  response.Response{data=model.Invoice}
// @Router       /api/invoices/current/save [post]
func (h *InvoiceHandler) SaveInvoice(c *gin.Context) {
	h.store.SaveInvoice()
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.store.CurrentInvoice()))
}

// GetTotals returns the draft's derived amounts
// @Summary      Draft totals
// @Description  Recomputes subtotal, tax, discount and total for the current draft
// @Tags         draft
// @Produce      json
// @Success      200  {object}  response.Response{data=invoice.Totals}
// @Router       /api/invoices/current/totals [get]
func (h *InvoiceHandler) GetTotals(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.store.Totals()))
}

// AddItem appends an empty line item to the draft
// @Summary      Add line item
// @Tags         draft
// @Produce      json
// @Success      201  {object}  response.Response{data=model.Invoice}
// @Router       /api/invoices/current/items [post]
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	h.store.AddInvoiceItem()
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, h.store.CurrentInvoice()))
}

// UpdateItem merges a partial update into one line item
// @Summary      Update line item
// @Description  Shallow-merges the provided fields into the matching item; unknown ids are a no-op
// @Tags         draft
// @Accept       json
// @Produce      json
// @Param        itemId   path      string              true  "Item ID"
// @Param        payload  body      invoice.ItemUpdate  true  "Fields to update"
// @Success      200      {object}  response.Response{data=model.Invoice}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/current/items/{itemId} [patch]
func (h *InvoiceHandler) UpdateItem(c *gin.Context) {
	var update invoice.ItemUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	h.store.UpdateInvoiceItem(c.Param("itemId"), update)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.store.CurrentInvoice()))
}

// RemoveItem deletes one line item from the draft
// @Summary      Remove line item
// @Description  Removes the matching item; the last remaining item is never removed
// @Tags         draft
// @Produce      json
// @Param        itemId  path      string  true  "Item ID"
// @Success      200     {object}  response.Response{data=model.Invoice}
// @Router       /api/invoices/current/items/{itemId} [delete]
func (h *InvoiceHandler) RemoveItem(c *gin.Context) {
	h.store.RemoveInvoiceItem(c.Param("itemId"))
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.store.CurrentInvoice()))
}

// CreateScheduleRequest is the payload for generating a payment schedule.
type CreateScheduleRequest struct {
	Intervals int    `json:"intervals" binding:"required"`
	StartDate string `json:"startDate"`
}

// CreateSchedule splits the draft total into installments
// @Summary      Create payment schedule
// @Description  Splits the draft's total into equal monthly installments starting from the given date (today when omitted)
// @Tags         draft
// @Accept       json
// @Produce      json
// @Param        payload  body      CreateScheduleRequest  true  "Schedule parameters"
// @Success      201      {object}  response.Response{data=[]schedule.Installment}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/current/schedule [post]
func (h *InvoiceHandler) CreateSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.store.CreateSchedule(req.Intervals, req.StartDate); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, h.store.PaymentSchedule()))
}

// GetSchedule returns the last generated schedule
// @Summary      Get payment schedule
// @Description  Returns the installments from the most recent schedule generation, with a display rendering
// @Tags         draft
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/invoices/current/schedule [get]
func (h *InvoiceHandler) GetSchedule(c *gin.Context) {
	installments := h.store.PaymentSchedule()
	currency := h.store.CurrentInvoice().Currency
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"installments": installments,
		"display":      schedule.FormatForDisplay(installments, currency),
	}))
}

// GeneratePDF renders the draft to a PDF document
// @Summary      Generate PDF
// @Description  Renders the current draft to a PDF file and returns the file name
// @Tags         draft
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/invoices/current/pdf [post]
func (h *InvoiceHandler) GeneratePDF(c *gin.Context) {
	fileName, err := h.store.GeneratePDF(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"fileName": fileName,
		"message":  h.store.StatusMessage(),
	}))
}

// EmailInvoiceRequest is the payload for sending the draft by email.
type EmailInvoiceRequest struct {
	RecipientEmail string `json:"recipientEmail" binding:"required"`
}

// EmailInvoice generates a PDF and emails it to the recipient
// @Summary      Email invoice
// @Description  Generates a PDF for the current draft and delivers it to the recipient address
// @Tags         draft
// @Accept       json
// @Produce      json
// @Param        payload  body      EmailInvoiceRequest  true  "Recipient"
// @Success      200      {object}  response.Response{data=invoice.EmailResult}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/current/email [post]
func (h *InvoiceHandler) EmailInvoice(c *gin.Context) {
	var req EmailInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	success, message := h.store.EmailInvoice(c.Request.Context(), req.RecipientEmail)
	result := invoice.EmailResult{Success: success, Message: message}
	if !success {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, message))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetWorkspace returns the session's presentation state
// @Summary      Get workspace state
// @Description  Returns the active view, filter, sort, search term and busy status
// @Tags         workspace
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/workspace [get]
func (h *InvoiceHandler) GetWorkspace(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"activeView":    h.store.ActiveView(),
		"filter":        h.store.Filter(),
		"sort":          h.store.Sort(),
		"searchTerm":    h.store.SearchTerm(),
		"isProcessing":  h.store.IsProcessing(),
		"statusMessage": h.store.StatusMessage(),
	}))
}

// SetView switches the active workspace view
// @Summary      Set active view
// @Tags         workspace
// @Accept       json
// @Produce      json
// @Param        payload  body      object  true  "{\"view\": \"dashboard\"}"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /api/workspace/view [put]
func (h *InvoiceHandler) SetView(c *gin.Context) {
	var req struct {
		View string `json:"view" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	h.store.SetActiveView(req.View)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, nil))
}

// SetFilter changes the history status filter
// @Summary      Set history filter
// @Tags         workspace
// @Accept       json
// @Produce      json
// @Param        payload  body      object  true  "{\"filter\": \"outstanding\"}"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /api/workspace/filter [put]
func (h *InvoiceHandler) SetFilter(c *gin.Context) {
	var req struct {
		Filter string `json:"filter" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	h.store.SetFilter(req.Filter)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, nil))
}

// SetSort changes the history ordering
// @Summary      Set history sort
// @Tags         workspace
// @Accept       json
// @Produce      json
// @Param        payload  body      invoice.Sort  true  "Sort order"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /api/workspace/sort [put]
func (h *InvoiceHandler) SetSort(c *gin.Context) {
	var req invoice.Sort
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	h.store.SetSort(req)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, nil))
}

// SetSearch changes the history search term
// @Summary      Set search term
// @Tags         workspace
// @Accept       json
// @Produce      json
// @Param        payload  body      object  true  "{\"searchTerm\": \"acme\"}"
// @Success      200      {object}  response.Response
// @Router       /api/workspace/search [put]
func (h *InvoiceHandler) SetSearch(c *gin.Context) {
	var req struct {
		SearchTerm string `json:"searchTerm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	h.store.SetSearchTerm(req.SearchTerm)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, nil))
}

