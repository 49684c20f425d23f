package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/apperr"
)

type checkoutRequest struct {
	// Amount is in cents.
	Amount int64 `json:"amount"`
}

type verifySessionRequest struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) createCheckoutSession(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, keyError, "Invalid amount")
		return
	}
	sess, err := s.payment.CreateCheckoutSession(c.Request.Context(), req.Amount)
	if err != nil {
		s.fail(c, keyError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": sess.ID})
}

func (s *Server) verifySession(c *gin.Context) {
	var req verifySessionRequest
	// An unreadable body is treated like a missing session id.
	_ = c.ShouldBindJSON(&req)

	v, err := s.payment.VerifySession(c.Request.Context(), req.SessionID)
	if err != nil {
		status := apperr.HTTPStatus(err)
		msg := apperr.Message(err)
		if status >= http.StatusInternalServerError {
			logFailure(c, err)
			msg = apperr.Cause(err)
		}
		c.JSON(status, gin.H{"success": false, "error": msg})
		return
	}
	if !v.Paid {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Payment not completed."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": v.Session})
}
