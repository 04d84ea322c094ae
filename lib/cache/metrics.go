// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup results.
const (
	resultHit    = "hit"
	resultMiss   = "miss"
	resultBypass = "bypass"
	resultError  = "error"
)

// Store results.
const (
	storeStored   = "stored"
	storeTooLarge = "too_large"
	storeError    = "error"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courseware_cache_requests_total",
		Help: "Content cache lookups by value kind and result",
	}, []string{"kind", "result"})

	storesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courseware_cache_stores_total",
		Help: "Content cache store attempts by value kind and result",
	}, []string{"kind", "result"})
)
