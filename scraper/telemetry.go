package scraper

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/use-agent/statuswatch/models"
)

var tracer = otel.Tracer("statuswatch/scraper")

// recordFault marks span as failed and passes status through.
func recordFault(span trace.Span, status models.Status) models.Status {
	span.SetStatus(codes.Error, status.Text)
	return status
}
