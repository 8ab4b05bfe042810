// Package requestid tags every HTTP request with a correlation identifier.
//
// Middleware reuses a well-formed X-Request-ID supplied by the client or
// generates a UUID, stores it in the request context and echoes it in the
// response header. LoggerExtractor plugs the identifier into pkg/logger so
// every record written with a request context carries request_id.
package requestid
