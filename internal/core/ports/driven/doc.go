// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports). The pipeline orchestrator never constructs
// its own clients; every collaborator is injected through one of these
// narrow interfaces so the idempotent-upsert contract stays explicit and
// testable with an in-memory fake.
package driven
