// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// composeTotal counts tree compositions by mode.
	composeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagecraft_compose_total",
		Help: "Section tree compositions by mode",
	}, []string{"mode"})

	// snapshotTotal counts created versions.
	snapshotTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagecraft_snapshots_total",
		Help: "Content versions created",
	})

	// restoreTotal counts restores by result.
	restoreTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagecraft_restores_total",
		Help: "Version restores by result",
	}, []string{"result"})

	// publishBlockedTotal counts transitions refused by the publish gate.
	publishBlockedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagecraft_publish_blocked_total",
		Help: "Status transitions into published refused by the alt text gate",
	})
)
