// Package rpc implements the Gramofon's JSON-RPC 2.0 wire convention: HTTP
// POST to /api/{session}, a fixed "call" method, and a result array whose
// first element is a status code.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ZeroSession is the session path segment used before login: 32 zero digits.
const ZeroSession = "00000000000000000000000000000000"

// DefaultTimeout bounds a single call when the caller's context carries no
// deadline of its own.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps how much of a response body is read. Device replies
// are small; anything larger is some other web server.
const maxResponseBytes = 1 << 20

// Caller executes one JSON-RPC call against a device. args must be a JSON
// object or nil (sent as {}). The returned payload is result[1], or an empty
// object when the device omitted it.
type Caller interface {
	Call(ctx context.Context, addr, session, module, method string, args []byte) (json.RawMessage, error)
}

// request is the fixed three-field envelope. The id is constant: calls are
// keyed by connection, never multiplexed on one.
type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *errorObject    `json:"error"`
}

type errorObject struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

// Transport is the HTTP implementation of Caller. It performs no retries;
// retry policy belongs to callers, and the discovery path treats any failure
// as "not a device".
type Transport struct {
	client *http.Client
	logger *zap.Logger
}

// Compile-time interface guard.
var _ Caller = (*Transport)(nil)

// NewTransport creates a Transport with the given per-call timeout.
// A zero timeout falls back to DefaultTimeout.
func NewTransport(timeout time.Duration, logger *zap.Logger) *Transport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Call sends one envelope and decodes the reply per the device convention:
// an error field or a non-zero result[0] is a RemoteError, a body that is
// not a JSON-RPC envelope is a ProtocolError, and anything below HTTP is a
// NetworkError.
func (t *Transport) Call(ctx context.Context, addr, session, module, method string, args []byte) (json.RawMessage, error) {
	if session == "" {
		session = ZeroSession
	}
	if len(args) == 0 {
		args = []byte("{}")
	}

	env := request{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "call",
		Params:  []any{module, method, json.RawMessage(args)},
	}
	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	url := fmt.Sprintf("http://%s/api/%s", addr, session)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	t.logger.Debug("rpc call",
		zap.String("addr", addr),
		zap.String("module", module),
		zap.String("method", method),
	)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Addr: addr, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{Addr: addr, Err: err}
	}

	return decode(addr, raw)
}

// decode interprets a raw response body. Split out so tests can exercise the
// envelope rules without a listener.
func decode(addr string, raw []byte) (json.RawMessage, error) {
	var env response
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &ProtocolError{Addr: addr, Err: err}
	}

	if env.Error != nil {
		return nil, &RemoteError{Code: env.Error.Code, Message: env.Error.Message}
	}

	if len(env.Result) == 0 {
		return nil, &ProtocolError{Addr: addr, Err: fmt.Errorf("response has neither result nor error")}
	}

	var result []json.RawMessage
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return nil, &ProtocolError{Addr: addr, Err: fmt.Errorf("result is not an array: %w", err)}
	}
	if len(result) == 0 {
		return nil, &ProtocolError{Addr: addr, Err: fmt.Errorf("result array is empty")}
	}

	var status int64
	if err := json.Unmarshal(result[0], &status); err != nil {
		return nil, &ProtocolError{Addr: addr, Err: fmt.Errorf("result status is not a number: %w", err)}
	}
	if status != 0 {
		return nil, &RemoteError{Code: status}
	}

	if len(result) > 1 {
		return result[1], nil
	}
	return json.RawMessage("{}"), nil
}
