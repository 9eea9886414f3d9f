// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package telemetry exports Prometheus metrics for the serving engine:
// queue depth, executor utilization, cache refresh duration, artifact
// cache hit rate, and emitter bytes written.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pricefeed_queue_depth",
		Help: "Number of accepted connections currently parked in the bounded queue",
	})
	ExecutorsInUse = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pricefeed_executors_in_use",
		Help: "Number of worker-pool executors currently busy",
	})
	ExecutorsMax = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pricefeed_executors_max",
		Help: "Configured size of the worker pool",
	})
	RefreshDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricefeed_refresh_duration_seconds",
		Help:    "Wall-clock duration of one complete eight-sub-load cache refresh pass",
		Buckets: prometheus.DefBuckets,
	})
	RefreshSubloadErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricefeed_refresh_subload_errors_total",
		Help: "Count of recoverable (600-series) sub-load errors, by sub-load name",
	}, []string{"subload"})
	CacheStale = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pricefeed_cache_seconds_since_refresh",
		Help: "Seconds elapsed since the cache's last completed refresh pass",
	})
	ArtifactHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pricefeed_artifact_cache_hits_total",
		Help: "Requests served from a reused artifact file",
	})
	ArtifactMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pricefeed_artifact_cache_misses_total",
		Help: "Requests that required generating a fresh artifact file",
	})
	EmitBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricefeed_emit_bytes_total",
		Help: "Bytes written by format emitters, by format",
	}, []string{"format"})
	ClientErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricefeed_client_errors_total",
		Help: "Client-side errors returned, by catalog code",
	}, []string{"code"})
)

func init() {
	prometheus.MustRegister(
		QueueDepth, ExecutorsInUse, ExecutorsMax, RefreshDuration,
		RefreshSubloadErrors, CacheStale, ArtifactHits, ArtifactMisses,
		EmitBytes, ClientErrors,
	)
}

// Serve starts a dedicated HTTP server exposing /metrics on addr — a
// standalone listener rather than a route on the service port, since
// the service speaks FastCGI, not HTTP.
func Serve(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = server.ListenAndServe()
	}()
}
