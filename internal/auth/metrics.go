package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_auth_failures_total",
			Help: "Requests rejected by authentication, by reason.",
		},
		[]string{"reason"},
	)

	authForbidden = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_auth_forbidden_total",
			Help: "Authenticated requests denied by a role gate.",
		},
		[]string{"required_role"},
	)
)
