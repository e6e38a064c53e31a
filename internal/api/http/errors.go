package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/tabterm/internal/domain/buttons"
	"github.com/GriffinCanCode/tabterm/internal/domain/state"
	"github.com/GriffinCanCode/tabterm/internal/domain/tabs"
	"github.com/GriffinCanCode/tabterm/internal/domain/terminal"
	"github.com/GriffinCanCode/tabterm/internal/domain/workspace"
	"github.com/GriffinCanCode/tabterm/internal/infrastructure/resilience"
)

// classify maps a domain error to a status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, terminal.ErrTabNotFound), errors.Is(err, tabs.ErrTabNotFound):
		return http.StatusNotFound, "tab_not_found"
	case errors.Is(err, buttons.ErrButtonNotFound):
		return http.StatusNotFound, "button_not_found"
	case errors.Is(err, terminal.ErrInvalidSize):
		return http.StatusBadRequest, "invalid_size"
	case errors.Is(err, buttons.ErrEmptyCommand):
		return http.StatusBadRequest, "empty_command"
	case errors.Is(err, state.ErrInvalidState):
		return http.StatusBadRequest, "invalid_state"
	case errors.Is(err, tabs.ErrCannotCloseLastTab):
		return http.StatusConflict, "last_tab"
	case errors.Is(err, workspace.ErrTabEnded):
		return http.StatusGone, "tab_ended"
	case errors.Is(err, workspace.ErrNoActiveTab):
		return http.StatusConflict, "no_active_tab"
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		return http.StatusServiceUnavailable, "circuit_open"
	case errors.Is(err, workspace.ErrPersist):
		return http.StatusInternalServerError, "persist_failed"
	default:
		return http.StatusInternalServerError, terminal.Kind(err)
	}
}

func respondError(c *gin.Context, err error) {
	status, code := classify(err)
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
}
