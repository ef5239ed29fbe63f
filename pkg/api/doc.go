// Package api implements the Taghive HTTP surface: account and
// container upserts, event ingestion, and analytics reads, all rooted
// under /v1. Handlers translate core errors into HTTP status codes and
// never expose raw credentials in responses or logs.
package api
