package rpc

import "fmt"

// NetworkError wraps a transport-level failure: connection refused, timeout,
// DNS failure. The device may simply not exist at the address.
type NetworkError struct {
	Addr string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("rpc: network error calling %s: %v", e.Addr, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProtocolError means the peer answered, but not with a well-formed JSON-RPC
// envelope. Whatever is listening at the address is not a Gramofon API.
type ProtocolError struct {
	Addr string
	Err  error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("rpc: malformed response from %s: %v", e.Addr, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// RemoteError is a failure reported by the device itself, either through the
// envelope's error field or a non-zero status in result[0]. Message is empty
// for status-code failures.
type RemoteError struct {
	Code    int64
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("rpc: device reported status %d", e.Code)
	}
	return fmt.Sprintf("rpc: device error %d: %s", e.Code, e.Message)
}

// AuthError means login returned status 0 but no session token. Treated the
// same as a device-reported failure by callers.
type AuthError struct {
	Addr string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("rpc: login to %s returned no session token", e.Addr)
}
