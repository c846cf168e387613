// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Admission decision keys. Only these may be attached by RecordAdmission.
const (
	AdmissionOutcomeKey = "vidshare.admission.outcome"
	AdmissionReasonKey  = "vidshare.admission.reason"
	AdmissionFieldKey   = "vidshare.admission.field"
)

// Admission outcomes.
const (
	AdmissionAccepted = "accepted"
	AdmissionRejected = "rejected"
)

// RecordAdmission puts the admission decision on the current span and counts
// it on the global meter provider. field and reason are empty when accepted.
func RecordAdmission(ctx context.Context, outcome, field, reason string) {
	attrs := []attribute.KeyValue{attribute.String(AdmissionOutcomeKey, outcome)}
	if field != "" {
		attrs = append(attrs, attribute.String(AdmissionFieldKey, field))
	}
	if reason != "" {
		attrs = append(attrs, attribute.String(AdmissionReasonKey, reason))
	}

	trace.SpanFromContext(ctx).SetAttributes(attrs...)

	// looked up per call so a provider installed later is honoured
	meter := otel.GetMeterProvider().Meter("vidshare.admission")
	counter, err := meter.Int64Counter("vidshare_admission_decisions_total",
		metric.WithDescription("Upload admission decisions"))
	if err != nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}
