// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Breaker metrics are labelled by the guarded storage read ("feed").
var (
	storageBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vidshare_storage_breaker_state",
		Help: "Breaker guarding storage reads, one-hot by state; open means reads are served from the default dataset",
	}, []string{"breaker", "state"})

	storageBreakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidshare_storage_breaker_trips_total",
		Help: "Times a storage breaker opened, by trigger",
	}, []string{"breaker", "trigger"})

	storageBreakerShortCircuits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidshare_storage_breaker_short_circuits_total",
		Help: "Storage reads skipped because the breaker was open",
	}, []string{"breaker"})
)

var breakerStates = []string{"closed", "half-open", "open"}

// SetBreakerState marks state as the active state of breaker.
func SetBreakerState(breaker, state string) {
	for _, s := range breakerStates {
		value := 0.0
		if s == state {
			value = 1.0
		}
		storageBreakerState.WithLabelValues(breaker, s).Set(value)
	}
}

// RecordBreakerTrip counts breaker opening. trigger is threshold_exceeded
// or trial_failed.
func RecordBreakerTrip(breaker, trigger string) {
	storageBreakerTrips.WithLabelValues(breaker, trigger).Inc()
}

// RecordBreakerShortCircuit counts a read rejected without reaching storage.
func RecordBreakerShortCircuit(breaker string) {
	storageBreakerShortCircuits.WithLabelValues(breaker).Inc()
}
