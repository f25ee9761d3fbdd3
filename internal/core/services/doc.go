// Package services implements the core pipeline logic: normalization of
// exported records, ingestion orchestration, and the grounded query
// pipeline. Services depend only on ports, never on concrete adapters.
package services
