/*
Package metrics defines and registers Ferry's Prometheus metrics.

All metrics are package-level collectors registered in init and exposed
over HTTP via Handler. Reconciliation rounds record their duration and
explicit batch size; orphan kills, stopped apps, and driver command counts
accumulate as counters. The Timer helper wraps the start/observe pattern:

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ReconciliationDuration)
*/
package metrics
