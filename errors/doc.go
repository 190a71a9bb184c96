// Package errors classifies pipeline failures.
//
// Every failure a component reports is an *AppError. Its ErrorCode decides
// the HTTP status and whether a caller may retry; the Cause is kept for logs
// and never serialized.
package errors
