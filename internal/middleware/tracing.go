package middleware

import (
	"fmt"

	"interu/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fiberHeaderCarrier struct {
	c *fiber.Ctx
}

func (h fiberHeaderCarrier) Get(key string) string { return h.c.Get(key) }
func (h fiberHeaderCarrier) Set(key, value string) { h.c.Set(key, value) }
func (h fiberHeaderCarrier) Keys() []string {
	keys := make([]string, 0)
	h.c.Request().Header.VisitAll(func(k, _ []byte) {
		keys = append(keys, string(k))
	})
	return keys
}

var _ propagation.TextMapCarrier = fiberHeaderCarrier{}

// TracingMiddleware starts a server span per request and exposes its trace ID
// through locals and the X-Trace-ID response header.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), fiberHeaderCarrier{c})

		spanName := fmt.Sprintf("%s %s", c.Method(), c.Path())
		ctx, span := observability.Tracer.Start(ctx, spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.path", c.Path()),
				attribute.String("http.ip", c.IP()),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Set("X-Trace-ID", traceID)
		if requestID := c.Locals("requestid"); requestID != nil {
			span.SetAttributes(attribute.String("request.id", fmt.Sprintf("%v", requestID)))
		}

		c.SetUserContext(ctx)
		err := c.Next()

		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
		}
		if userID, ok := c.Locals("userID").(uint); ok {
			span.SetAttributes(attribute.Int64("user.id", int64(userID)))
		}

		return err
	}
}
