// Package metrics exposes Prometheus collectors for index runs and searches.
//
// Each Metrics owns its own registry, so tests and multiple instances never
// collide on the global default registry. Every series carries a "service"
// label taken from Config.ServiceName.
package metrics
