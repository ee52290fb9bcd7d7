// Package device exposes the Gramofon management API as a typed client. A
// Client wraps one device address, owns the session token obtained via
// login, and maps the reverse-engineered RPC catalog (modules session, anet,
// mfgd, wifid, ledd) onto Go methods.
package device

import (
	"context"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"gramofonctl/internal/rpc"
)

// Default credentials. The device ships with these and offers no way to
// change them; see the project README before exposing one to an untrusted
// network.
const (
	DefaultUsername = "admin"
	DefaultPassword = "admin"
)

// Client talks to a single Gramofon. Safe for concurrent use; the session
// token is guarded because login may race with calls on other goroutines.
type Client struct {
	addr     string
	caller   rpc.Caller
	logger   *zap.Logger
	username string
	password string
	timeout  time.Duration

	// scanSettle is overridable in tests so ScanNetworks does not sleep.
	scanSettle time.Duration

	mu      sync.RWMutex
	session string
}

// Option configures a Client.
type Option func(*Client)

// WithCaller substitutes the transport. Tests use this to inject fakes.
func WithCaller(c rpc.Caller) Option {
	return func(cl *Client) { cl.caller = c }
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithCredentials overrides the default admin/admin pair.
func WithCredentials(username, password string) Option {
	return func(cl *Client) {
		cl.username = username
		cl.password = password
	}
}

// WithTimeout sets the per-call timeout used when constructing the default
// transport. Ignored when WithCaller is also given.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

// NewClient creates a client for the device at addr (IP or host:port).
func NewClient(addr string, opts ...Option) *Client {
	c := &Client{
		addr:       addr,
		username:   DefaultUsername,
		password:   DefaultPassword,
		timeout:    rpc.DefaultTimeout,
		scanSettle: ssidScanSettle,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.caller == nil {
		c.caller = rpc.NewTransport(c.timeout, c.logger)
	}
	return c
}

// Addr returns the device address this client talks to.
func (c *Client) Addr() string { return c.addr }

// Session returns the current session token, or the empty string before a
// successful login.
func (c *Client) Session() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Login authenticates and stores the session token for subsequent calls.
// A status-0 reply without a sid field is an AuthError: the device claimed
// success but gave us nothing to put in the URL path.
func (c *Client) Login(ctx context.Context) error {
	args, err := rpc.Args{}.
		Set("username", c.username).
		Set("password", c.password).
		Bytes()
	if err != nil {
		return err
	}

	payload, err := c.caller.Call(ctx, c.addr, rpc.ZeroSession, "session", "login", args)
	if err != nil {
		return err
	}

	sid := gjson.GetBytes(payload, "sid").String()
	if sid == "" {
		return &rpc.AuthError{Addr: c.addr}
	}

	c.mu.Lock()
	c.session = sid
	c.mu.Unlock()

	c.logger.Debug("logged in", zap.String("addr", c.addr))
	return nil
}

// call issues one RPC using the stored session token.
func (c *Client) call(ctx context.Context, module, method string, args []byte) (gjson.Result, error) {
	payload, err := c.caller.Call(ctx, c.addr, c.Session(), module, method, args)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.ParseBytes(payload), nil
}
