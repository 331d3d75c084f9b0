package api

import (
	"errors"       // Error classification
	"net/http"     // HTTP status codes
	"strconv"      // Path parameter parsing
	"strings"      // Message trimming
	"unicode"      // Capitalisation
	"unicode/utf8" // First rune of a message

	sentrygin "github.com/getsentry/sentry-go/gin" // Sentry hub per request
	"github.com/gin-gonic/gin"                     // Gin web framework
	"github.com/go-playground/validator/v10"       // Binding errors
	"github.com/sirupsen/logrus"                   // Structured logging

	"social_network/internal/domain"     // Error classes
	"social_network/internal/middleware" // Request ids
	"social_network/internal/service"    // Validation messages
)

// respondError maps a service error to its HTTP status and writes {"message": ...}
func respondError(c *gin.Context, err error) {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusBadRequest, gin.H{"message": conflict.Message, "conflictingField": conflict.Field})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": message(err, domain.ErrValidation)})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"message": message(err, domain.ErrConflict)})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": message(err, domain.ErrForbidden)})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": message(err, domain.ErrNotFound)})
	default:
		internalError(c, err)
	}
}

// internalError logs and reports err; the client only sees a generic message
func internalError(c *gin.Context, err error) {
	logrus.WithFields(logrus.Fields{
		"request_id": middleware.RequestID(c),
		"method":     c.Request.Method,
		"path":       c.FullPath(),
		"user_id":    middleware.CurrentUserID(c),
		"error":      err.Error(),
	}).Error("request failed")
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}

// message strips the class prefix added by the domain helpers
func message(err, class error) string {
	msg := strings.TrimPrefix(err.Error(), class.Error()+": ")
	if msg == "" {
		return class.Error()
	}
	r, size := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(r)) + msg[size:]
}

// bindError answers a request body that failed to decode or validate
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": service.FieldMessage(verrs[0])})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
}

// idParam parses a numeric path parameter, answering 400 when it is not one
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}
