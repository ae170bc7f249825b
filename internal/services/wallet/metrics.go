package wallet

import "time"

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration) {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)          {}
func (n *NoopMetricsCollector) RecordCacheHit()                               {}
func (n *NoopMetricsCollector) RecordCacheMiss()                              {}
func (n *NoopMetricsCollector) RecordTransaction(string, string, int64)       {}
