// Package http contains the chi HTTP handlers: scan batch upload,
// health, and the Prometheus metrics endpoint. Handlers speak the JSON
// envelope rendered by go-chi/render and route failures through the
// centralized error handler.
package http
