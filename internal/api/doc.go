// Package api handles incoming HTTP requests for the review service:
// request decoding and validation, mapping of service errors to status
// codes, and response formatting. Handlers depend only on review.Service.
//
// Successful responses are wrapped as {"data": ...}; errors are returned as
// {"error": "...", "trace_id": "..."} with a message that never includes
// internal error details.
package api
