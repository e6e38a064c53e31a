package http

import "github.com/gin-gonic/gin"

// Register mounts every endpoint on r. /metrics is served only when the
// handler set has a metrics collector.
func (h *Handlers) Register(r gin.IRoutes) {
	r.GET("/health", h.Health)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	r.GET("/tabs", h.ListTabs)
	r.POST("/tabs", h.CreateTab)
	r.DELETE("/tabs/:id", h.CloseTab)
	r.POST("/tabs/:id/input", h.Input)
	r.POST("/tabs/:id/resize", h.Resize)
	r.POST("/tabs/:id/focus", h.FocusTab)

	r.GET("/buttons", h.ListButtons)
	r.PUT("/buttons", h.ReplaceButtons)
	r.POST("/buttons", h.CreateButton)
	r.PUT("/buttons/:id", h.UpdateButton)
	r.DELETE("/buttons/:id", h.DeleteButton)
	r.POST("/buttons/:id/run", h.RunButton)

	r.GET("/state", h.GetState)
	r.PUT("/state/terminal", h.UpdateTerminalSettings)
	r.PUT("/state/sidebar", h.UpdateSidebarSettings)
}
