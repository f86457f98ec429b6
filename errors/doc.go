// Package errors defines the closed failure taxonomy shared by every stage
// of the request pipeline.
//
// A request either succeeds or terminates with exactly one *Error whose Kind
// is one of EncodingFailed, TransportFailed, DecodingFailed, ServerReported
// or Unknown. Classify maps raw Go errors (context cancellation, net errors,
// JSON errors) into the taxonomy; FromResponse inspects an HTTP status,
// headers and body to build server-reported errors, extracting the API
// error code, user and developer messages, and invalid-parameter codes.
//
// Secure storage and reachability failures use their own error domains and
// never appear here.
package errors
