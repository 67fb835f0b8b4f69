// Package services – Prometheus instrumentation for the verification-code
// lifecycle. Counters here complement the HTTP-level metrics emitted by the
// middleware package; labels are kept coarse (no per-recipient labels) so
// cardinality stays bounded.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// codesIssued counts successfully issued verification codes.
	codesIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "verification_codes_issued_total",
		Help: "Total number of verification codes issued.",
	})

	// sendsThrottled counts issue attempts rejected by the send limiter,
	// split by which rule rejected them.
	sendsThrottled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_sends_throttled_total",
			Help: "Total number of code sends rejected by the throttle.",
		},
		[]string{"reason"}, // "daily_limit" or "spacing"
	)

	// codesRedeemed counts codes successfully validated and consumed.
	codesRedeemed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "verification_codes_redeemed_total",
		Help: "Total number of verification codes redeemed.",
	})

	// validationFailures counts rejected validation attempts. Unknown,
	// expired, and already-used codes are indistinguishable to callers and
	// are counted together.
	validationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "verification_validation_failures_total",
		Help: "Total number of failed verification-code validations.",
	})
)

func init() {
	prometheus.MustRegister(codesIssued, sendsThrottled, codesRedeemed, validationFailures)
}

// observeThrottled records a throttle rejection under the matching reason
// label.
func observeThrottled(te *ThrottledError) {
	reason := te.Reason
	if reason == "" {
		reason = ThrottleReasonUnknown
	}
	sendsThrottled.WithLabelValues(reason).Inc()
}
