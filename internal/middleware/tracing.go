package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/mitronepal/JobMandu/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// infraPrefixes are polled by infrastructure rather than marketplace users.
var infraPrefixes = []string{"/health", "/metrics", "/api/metrics", "/api/swagger"}

func isInfraPath(path string) bool {
	for _, prefix := range infraPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// TracingMiddleware starts a server span per request, continuing any trace
// propagated by the caller. The trace id is echoed in X-Trace-ID.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isInfraPath(c.Path()) {
			return c.Next()
		}

		carrier := propagation.MapCarrier{}
		c.Request().Header.VisitAll(func(key, value []byte) {
			carrier.Set(strings.ToLower(string(key)), string(value))
		})
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), carrier)

		// Renamed once routing has matched a handler.
		ctx, span := observability.Tracer.Start(ctx, c.Method(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.OriginalURL()),
				attribute.String("http.client_ip", c.IP()),
			),
		)

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Set("X-Trace-ID", traceID)
		if rid := c.Locals("requestid"); rid != nil {
			span.SetAttributes(attribute.String("request.id", fmt.Sprint(rid)))
		}
		c.SetUserContext(context.WithValue(ctx, TraceIDKey, traceID))

		err := c.Next()

		status := c.Response().StatusCode()
		route := c.Route().Path
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		if id := c.Params("id"); id != "" {
			span.SetAttributes(attribute.String("listing.id", id))
		}
		if uid, ok := c.Locals("userID").(string); ok && uid != "" {
			span.SetAttributes(attribute.String("user.id", uid))
		}
		spanErr := err
		if spanErr == nil && status >= fiber.StatusInternalServerError {
			spanErr = fmt.Errorf("http status %d", status)
		}
		observability.EndSpan(span, spanErr)
		return err
	}
}
