// Package middleware provides the HTTP request logging and Prometheus
// metrics middleware applied to every route.
package middleware
