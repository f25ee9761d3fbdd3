// Package driving provides interfaces for primary (inbound) ports: the
// operations the CLI shell calls into the pipeline.
package driving
