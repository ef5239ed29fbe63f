// Package middleware provides the API key authentication middleware sitting
// in front of every data endpoint.
package middleware
