package paymentmethod

import "time"

// MetricsCollector receives provisioning outcomes and processor latencies.
type MetricsCollector interface {
	RecordProvisionResult(methodType, result string)
	RecordProcessorCall(operation string, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordProvisionResult(string, string)             {}
func (n *NoopMetricsCollector) RecordProcessorCall(string, time.Duration, error) {}
