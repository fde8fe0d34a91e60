// Package common contains constants, sentinel errors and small helpers shared
// by the pinboard client packages.
package common

// RequestIDHeaderName carries a per-call id on outbound backend requests so
// client logs can be matched with server logs.
const RequestIDHeaderName = "X-Request-ID"

// DefaultServerURL is where the backend listens in a local setup.
const DefaultServerURL = "http://127.0.0.1:8000"
