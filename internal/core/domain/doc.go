// Package domain contains the core business entities of the pipeline.
// All types here are value objects owned by the processing run that
// created them; nothing is mutated after an extractor returns it, except
// the entity-to-chunk linking step which only attaches a chunk key.
package domain
