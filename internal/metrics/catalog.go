// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidshare_uploads_total",
		Help: "Upload attempts by outcome and source kind",
	}, []string{"outcome", "kind"}) // outcome=admitted|rejected|failed

	admissionRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidshare_admission_rejections_total",
		Help: "Admission rejections by field and reason",
	}, []string{"field", "reason"})

	classifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidshare_url_classifications_total",
		Help: "Classified upload URLs by platform",
	}, []string{"platform"})

	viewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidshare_video_views_total",
		Help: "Total number of recorded video views",
	})

	likeAdjustments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidshare_like_adjustments_total",
		Help: "Like adjustments by direction",
	}, []string{"direction"}) // direction=up|down

	optimisticRollbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidshare_optimistic_rollbacks_total",
		Help: "Optimistic updates rolled back after a remote failure",
	}, []string{"operation"})
)

// RecordUpload counts an upload attempt.
func RecordUpload(outcome, kind string) {
	uploadsTotal.WithLabelValues(outcome, kind).Inc()
}

// RecordAdmissionRejection counts a refused field.
func RecordAdmissionRejection(field, reason string) {
	admissionRejections.WithLabelValues(field, reason).Inc()
}

// RecordClassification counts the platform an upload URL resolved to.
func RecordClassification(platform string) {
	classifications.WithLabelValues(platform).Inc()
}

// RecordView counts a video view.
func RecordView() {
	viewsTotal.Inc()
}

// RecordLikeAdjustment counts a like or unlike.
func RecordLikeAdjustment(delta int64) {
	direction := "up"
	if delta < 0 {
		direction = "down"
	}
	likeAdjustments.WithLabelValues(direction).Inc()
}

// RecordOptimisticRollback counts a rolled back local update.
func RecordOptimisticRollback(operation string) {
	optimisticRollbacks.WithLabelValues(operation).Inc()
}
