// Package apperr defines the sentinel errors shared across the vault,
// search, and API layers.
package apperr

import "errors"

var (
	// ErrNotFound means a referenced page, category, or template does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID means an identifier failed the UUID shape check.
	ErrInvalidID = errors.New("invalid identifier")
	// ErrPathEscape means a resolved path would land outside the vault root.
	// Treated as a security violation, not an ordinary bad request.
	ErrPathEscape = errors.New("path escapes vault root")
	// ErrUnsupportedMedia means an upload had a disallowed file extension.
	ErrUnsupportedMedia = errors.New("unsupported media type")
	// ErrPayloadTooLarge means an upload exceeded its size limit.
	ErrPayloadTooLarge = errors.New("payload too large")
)
