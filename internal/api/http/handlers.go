package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/tabterm/internal/domain/buttons"
	"github.com/GriffinCanCode/tabterm/internal/domain/state"
	"github.com/GriffinCanCode/tabterm/internal/domain/terminal"
	"github.com/GriffinCanCode/tabterm/internal/domain/workspace"
	"github.com/GriffinCanCode/tabterm/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/tabterm/internal/infrastructure/resilience"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	ws      *workspace.Workspace
	metrics *monitoring.Metrics
	breaker *resilience.Breaker
}

// NewHandlers creates a new handler set. breaker may be nil.
func NewHandlers(ws *workspace.Workspace, metrics *monitoring.Metrics, breaker *resilience.Breaker) *Handlers {
	return &Handlers{
		ws:      ws,
		metrics: metrics,
		breaker: breaker,
	}
}

type inputRequest struct {
	Data string `json:"data"`
}

type resizeRequest struct {
	Rows uint16 `json:"rows"`
	Cols uint16 `json:"cols"`
}

type buttonRequest struct {
	Name    string `json:"name"`
	Command string `json:"command"`
}

type runRequest struct {
	TabID  terminal.TabID    `json:"tab_id"`
	Params map[string]string `json:"params"`
}

// Health reports liveness with a few counters
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status": "healthy",
		"tabs":   len(h.ws.Tabs()),
	}
	if h.metrics != nil {
		resp["metrics"] = h.metrics.Snapshot()
	}
	if h.breaker != nil {
		resp["spawn_breaker"] = h.breaker.State().String()
	}
	c.JSON(http.StatusOK, resp)
}

// ListTabs lists open tabs in bar order
func (h *Handlers) ListTabs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tabs": h.ws.Tabs()})
}

// CreateTab starts a new shell
func (h *Handlers) CreateTab(c *gin.Context) {
	tab, err := h.ws.OpenTab()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tab_id": tab.ID, "tab": tab})
}

// CloseTab closes a tab on the user's behalf
func (h *Handlers) CloseTab(c *gin.Context) {
	id := terminal.TabID(c.Param("id"))
	if err := h.ws.CloseTab(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tab_id": id})
}

// Input writes to a tab's shell
func (h *Handlers) Input(c *gin.Context) {
	var req inputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	id := terminal.TabID(c.Param("id"))
	if err := h.ws.Input(id, []byte(req.Data)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tab_id": id})
}

// Resize changes a tab's terminal size
func (h *Handlers) Resize(c *gin.Context) {
	var req resizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	id := terminal.TabID(c.Param("id"))
	if err := h.ws.Resize(id, req.Rows, req.Cols); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tab_id": id})
}

// FocusTab makes a tab the active one
func (h *Handlers) FocusTab(c *gin.Context) {
	id := terminal.TabID(c.Param("id"))
	if err := h.ws.Focus(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tab_id": id})
}

// ListButtons lists saved buttons
func (h *Handlers) ListButtons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"buttons": h.ws.Buttons()})
}

// ReplaceButtons saves the whole list at once
func (h *Handlers) ReplaceButtons(c *gin.Context) {
	var req struct {
		Buttons []buttons.Button `json:"buttons"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	list, err := h.ws.ReplaceButtons(req.Buttons)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"buttons": list})
}

// CreateButton adds a button
func (h *Handlers) CreateButton(c *gin.Context) {
	var req buttonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	b, err := h.ws.AddButton(req.Name, req.Command)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// UpdateButton edits a button
func (h *Handlers) UpdateButton(c *gin.Context) {
	var req buttonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	b, err := h.ws.UpdateButton(c.Param("id"), req.Name, req.Command)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// DeleteButton removes a button
func (h *Handlers) DeleteButton(c *gin.Context) {
	id := c.Param("id")
	if err := h.ws.DeleteButton(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// RunButton sends a button's command to a tab. An empty body runs it in
// the active tab with no parameters.
func (h *Handlers) RunButton(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	tab, line, err := h.ws.RunButton(c.Param("id"), req.TabID, req.Params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tab_id": tab, "command": line})
}

// GetState returns persisted settings
func (h *Handlers) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.ws.State())
}

// UpdateTerminalSettings saves terminal display settings
func (h *Handlers) UpdateTerminalSettings(c *gin.Context) {
	var req state.TerminalSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	st, err := h.ws.UpdateTerminalSettings(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// UpdateSidebarSettings saves sidebar settings
func (h *Handlers) UpdateSidebarSettings(c *gin.Context) {
	var req state.SidebarSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	st, err := h.ws.UpdateSidebarSettings(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
