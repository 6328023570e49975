package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cabinet-backend/persistence"
	"cabinet-backend/services"
	"cabinet-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler serves the HTTP API on top of a store.
type Handler struct {
	store     *services.Store
	reminders *services.ReminderService
	jwtSecret string
	jwtExpiry time.Duration
	logger    zerolog.Logger
}

type Options struct {
	JWTSecret string
	JWTExpiry time.Duration
	Reminders *services.ReminderService
	Logger    zerolog.Logger
}

func NewHandler(store *services.Store, opts Options) *Handler {
	if opts.JWTExpiry <= 0 {
		opts.JWTExpiry = 24 * time.Hour
	}
	return &Handler{
		store:     store,
		reminders: opts.Reminders,
		jwtSecret: opts.JWTSecret,
		jwtExpiry: opts.JWTExpiry,
		logger:    opts.Logger,
	}
}

// actorContext tags the request context with the authenticated user so
// created records carry their author.
func actorContext(c *gin.Context) context.Context {
	return services.WithActor(c.Request.Context(), c.GetString(utils.ContextUserID))
}

// respondStoreError maps a store error to a status code.
func (h *Handler) respondStoreError(c *gin.Context, err error) {
	var (
		cascade *services.CascadeError
		storage *persistence.Error
	)
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidTransition):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNumberConflict):
		utils.RespondWithError(c, http.StatusConflict, "Invoice number conflict, retry")
	case errors.As(err, &cascade):
		h.logger.Error().Err(err).Msg("cascade delete incomplete")
		utils.RespondWithError(c, http.StatusInternalServerError, "Delete incomplete, orphans will be repaired")
	case errors.As(err, &storage):
		h.logger.Error().Err(err).Msg("storage failure")
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Database error")
	default:
		h.logger.Error().Err(err).Msg("request failed")
		utils.RespondWithError(c, http.StatusInternalServerError, "Internal error")
	}
}

func bindError(c *gin.Context, err error) {
	utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
}

// list keeps empty results encoded as [] rather than null.
func list[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
