package v1

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	onboardingResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_resolutions_total",
			Help: "Total number of onboarding status resolutions by resulting status",
		},
		[]string{"status"},
	)

	onboardingSuperseded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "onboarding_resolutions_superseded_total",
			Help: "Total number of onboarding resolutions discarded because a newer one started",
		},
	)

	externalCallFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_call_failures_total",
			Help: "Total number of failed calls to the matching/asset service",
		},
		[]string{"operation"},
	)
)
