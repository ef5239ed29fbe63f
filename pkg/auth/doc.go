// Package auth implements the shared-secret access gate. Every data-reading
// and data-mutating request passes through it before any store or analytics
// operation runs; a failure short-circuits with no observable side effect.
package auth
