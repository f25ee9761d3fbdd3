// Package domain contains the core business entities and errors for the
// Neocortex highlight retrieval pipeline. Types here have no dependencies
// on adapters or external services.
package domain
