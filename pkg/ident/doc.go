// Package ident generates human-readable entity identifiers.
//
// Ids have the shape {prefix}_{slug}_{suffix}: the slug is a deterministic,
// diacritic-free rendering of the entity name, the suffix is four random
// lowercase-alphanumeric characters retried against an existence predicate
// until unique. Retries are capped; exceeding the cap surfaces ErrExhausted
// rather than spinning forever.
package ident
