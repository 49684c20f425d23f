package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/config"
	"storefront-backend/internal/logging"
	"storefront-backend/internal/models"
)

const (
	headerRequestID = "X-Request-ID"
	tracerName      = "storefront-backend/httpapi"

	ctxUser      = "user"
	ctxPrincipal = "principal"
)

func routeOf(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return "unmatched"
}

// requestContext assigns a request id, starts a server span and attaches a
// request-scoped logger to the request context.
func (s *Server) requestContext() gin.HandlerFunc {
	tracer := otel.Tracer(tracerName)
	prop := otel.GetTextMapPropagator()

	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(headerRequestID, rid)

		ctx := prop.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+routeOf(c),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", routeOf(c)),
				attribute.String("request.id", rid),
			),
		)
		defer span.End()

		fields := []zap.Field{zap.String("request_id", rid)}
		if sc := span.SpanContext(); sc.IsValid() {
			fields = append(fields,
				zap.String("trace_id", sc.TraceID().String()),
				zap.String("span_id", sc.SpanID().String()),
			)
		}
		ctx = logging.WithContext(ctx, s.logger.With(fields...))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := logging.FromContext(c.Request.Context())
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", routeOf(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("http_access", fields...)
			return
		}
		log.Info("http_access", fields...)
	}
}

func (s *Server) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := routeOf(c)
		s.metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		s.metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// corsMiddleware admits credentialed requests from the storefront frontend,
// falling back to the default local frontend when none is configured.
func corsMiddleware(frontendURL string) gin.HandlerFunc {
	if frontendURL = strings.TrimRight(strings.TrimSpace(frontendURL), "/"); frontendURL == "" {
		frontendURL = config.DefaultFrontendURL
	}
	return cors.New(cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", headerRequestID},
		ExposeHeaders:    []string{headerRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// withTimeout bounds every downstream store and gateway call of a request.
func withTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// bearerToken returns the second space-separated part of the Authorization header.
func bearerToken(c *gin.Context) string {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func (s *Server) authenticate(c *gin.Context) {
	u, p, err := s.auth.Authenticate(c.Request.Context(), bearerToken(c))
	if err != nil {
		s.fail(c, keyMessage, err)
		c.Abort()
		return
	}
	c.Set(ctxUser, u)
	c.Set(ctxPrincipal, p)
	c.Next()
}

func (s *Server) requireAdmin(c *gin.Context) {
	if err := auth.RequireAdmin(principal(c)); err != nil {
		s.fail(c, keyError, err)
		c.Abort()
		return
	}
	c.Next()
}

func principal(c *gin.Context) auth.Principal {
	p, _ := c.MustGet(ctxPrincipal).(auth.Principal)
	return p
}

func currentUser(c *gin.Context) *models.User {
	u, _ := c.MustGet(ctxUser).(*models.User)
	return u
}
