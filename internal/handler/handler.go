package handler

import (
	"errors"
	"net/http"
	"strconv"

	"receipt-ledger/internal/logger"
	"receipt-ledger/internal/middleware"
	"receipt-ledger/internal/models"
	"receipt-ledger/internal/receiptparser"
	"receipt-ledger/internal/service"
	"receipt-ledger/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser fetches the authenticated user or writes a 401.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return user, true
}

// pathID parses the :id route parameter. A malformed id reads as not found.
func pathID(c *gin.Context, entity string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		util.Error(c, http.StatusNotFound, entity+" not found")
		return 0, false
	}
	return uint(id), true
}

// bindError reports a body or query that could not be decoded at all.
func bindError(c *gin.Context, err error) {
	util.ErrorWithDetails(c, http.StatusUnprocessableEntity, "validation failed", map[string]string{
		"body": err.Error(),
	})
}

// respondError maps service and parser errors onto HTTP responses. entity
// names the resource in not-found messages. Not found and not owned look the
// same from outside.
func respondError(c *gin.Context, entity string, err error) {
	log := logger.FromContext(c.Request.Context())

	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		util.ErrorWithDetails(c, http.StatusUnprocessableEntity, "validation failed", ve.Fields)
	case errors.Is(err, service.ErrUnauthorized):
		log.Warn().Err(err).Msg("access to another user's " + entity)
		util.Error(c, http.StatusNotFound, entity+" not found")
	case errors.Is(err, service.ErrNotFound):
		util.Error(c, http.StatusNotFound, entity+" not found")
	case errors.Is(err, service.ErrNoConversionRate):
		util.Error(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrDataUnavailable):
		log.Error().Err(err).Msg("store unavailable")
		util.Error(c, http.StatusServiceUnavailable, "data unavailable, try again later")
	case errors.Is(err, receiptparser.ErrInvalidImage):
		util.ErrorWithDetails(c, http.StatusUnprocessableEntity, "Invalid image file.", map[string]string{
			"image": err.Error(),
		})
	case errors.Is(err, receiptparser.ErrUpstream):
		log.Error().Err(err).Msg("receipt parser failed")
		util.Error(c, http.StatusInternalServerError, "Error processing image: "+err.Error())
	default:
		log.Error().Err(err).Msg("unhandled error")
		util.Error(c, http.StatusInternalServerError, "internal server error")
	}
}
