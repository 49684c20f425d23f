package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/logging"
)

// User and cart routes report errors under "message", catalog and checkout
// routes under "error".
const (
	keyMessage = "message"
	keyError   = "error"
)

func (s *Server) fail(c *gin.Context, key string, err error) {
	status := apperr.HTTPStatus(err)
	msg := apperr.Message(err)
	if status < http.StatusInternalServerError {
		c.JSON(status, gin.H{key: msg})
		return
	}

	logFailure(c, err)
	cause := apperr.Cause(err)
	if key == keyMessage {
		c.JSON(status, gin.H{"message": "An error occurred", "error": cause})
		return
	}
	c.JSON(status, gin.H{"error": cause})
}

func logFailure(c *gin.Context, err error) {
	logging.FromContext(c.Request.Context()).Error("request_failed",
		zap.String("route", routeOf(c)),
		zap.Error(err))
}

func badRequest(c *gin.Context, key, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{key: msg})
}

// objectID parses a hex id, writing a 400 response when it is malformed.
func objectID(c *gin.Context, key, raw, what string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		badRequest(c, key, "Invalid "+what+" id")
		return primitive.NilObjectID, false
	}
	return id, true
}
