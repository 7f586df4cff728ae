// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and the generation service, translating HTTP concerns to generation
// requests and generation errors to status codes.
package api
