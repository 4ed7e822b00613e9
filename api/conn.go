// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package api

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/retry"
)

var logger = loggo.GetLogger("waitfor.api")

const (
	adminFacade        = "Admin"
	adminFacadeVersion = 3
)

// Info holds everything needed to connect to a controller model.
type Info struct {
	// Addrs holds controller addresses, tried in order.
	Addrs []string

	// ModelUUID identifies the model to connect to.
	ModelUUID string

	// Username and Password authenticate the session.
	Username string
	Password string

	// CACert, when non-empty, is the PEM certificate the controller's
	// TLS certificate must chain to. When empty, verification is
	// skipped, as for a controller reached through a trusted tunnel.
	CACert string
}

// Validate checks the connection info for consistency.
func (info Info) Validate() error {
	if len(info.Addrs) == 0 {
		return errors.NotValidf("missing addresses")
	}
	if info.Username == "" {
		return errors.NotValidf("missing username")
	}
	return nil
}

// DialOpts holds the retry policy for establishing a connection.
type DialOpts struct {
	// Attempts is how many times each address is tried. Values below
	// one mean a single attempt.
	Attempts int

	// Delay is the pause between attempts, doubled each time.
	Delay time.Duration

	// Clock drives the retry delays.
	Clock clock.Clock
}

// DefaultDialOpts returns the dial policy used when none is given.
func DefaultDialOpts() DialOpts {
	return DialOpts{
		Attempts: 5,
		Delay:    500 * time.Millisecond,
		Clock:    clock.WallClock,
	}
}

// request is one frame sent to the controller.
type request struct {
	RequestID uint64      `json:"request-id"`
	Type      string      `json:"type"`
	Version   int         `json:"version"`
	ID        string      `json:"id,omitempty"`
	Request   string      `json:"request"`
	Params    interface{} `json:"params,omitempty"`
}

// response is one frame received from the controller.
type response struct {
	RequestID uint64          `json:"request-id"`
	Error     string          `json:"error,omitempty"`
	ErrorCode string          `json:"error-code,omitempty"`
	Response  json.RawMessage `json:"response,omitempty"`
}

// RequestError represents an error returned from an RPC request.
type RequestError struct {
	Message string
	Code    string
}

func (e *RequestError) Error() string {
	if e.Code != "" {
		return e.Message + " (" + e.Code + ")"
	}
	return e.Message
}

// IsRequestError reports whether the error is a RequestError.
func IsRequestError(err error) bool {
	_, ok := errors.Cause(err).(*RequestError)
	return ok
}

// Conn is a synchronous RPC connection to a controller. It serves one
// caller at a time; concurrent calls are serialized.
type Conn struct {
	mu        sync.Mutex
	ws        *websocket.Conn
	requestID uint64
}

// Dial connects to one of the addresses in info, logs in, and returns
// the ready-to-use connection.
func Dial(info Info, opts DialOpts) (*Conn, error) {
	if err := info.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.Delay <= 0 {
		opts.Delay = 500 * time.Millisecond
	}

	tlsConfig, err := tlsConfigFor(info)
	if err != nil {
		return nil, errors.Trace(err)
	}
	dialer := websocket.Dialer{TLSClientConfig: tlsConfig}

	var ws *websocket.Conn
	err = retry.Call(retry.CallArgs{
		Func: func() error {
			var lastErr error
			for _, addr := range info.Addrs {
				target := apiURL(addr, info.ModelUUID)
				logger.Debugf("dialing %q", target)
				conn, _, dialErr := dialer.Dial(target, nil)
				if dialErr == nil {
					ws = conn
					return nil
				}
				lastErr = errors.Annotatef(dialErr, "dialing %q", target)
			}
			return lastErr
		},
		NotifyFunc: func(err error, attempt int) {
			logger.Debugf("dial attempt %d: %v", attempt, err)
		},
		Attempts:    opts.Attempts,
		Delay:       opts.Delay,
		BackoffFunc: retry.DoubleDelay,
		Clock:       opts.Clock,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}

	conn := &Conn{ws: ws}
	if err := conn.login(info); err != nil {
		_ = conn.Close()
		return nil, errors.Annotate(err, "logging in")
	}
	return conn, nil
}

func apiURL(addr, modelUUID string) string {
	u := url.URL{Scheme: "wss", Host: addr, Path: "/api"}
	if modelUUID != "" {
		u.Path = fmt.Sprintf("/model/%s/api", modelUUID)
	}
	return u.String()
}

func tlsConfigFor(info Info) (*tls.Config, error) {
	if info.CACert == "" {
		return &tls.Config{InsecureSkipVerify: true}, nil
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM([]byte(info.CACert)) {
		return nil, errors.NotValidf("CA certificate")
	}
	return &tls.Config{RootCAs: pool}, nil
}

type loginRequest struct {
	AuthTag     string `json:"auth-tag"`
	Credentials string `json:"credentials"`
}

func (c *Conn) login(info Info) error {
	args := loginRequest{
		AuthTag:     "user-" + info.Username,
		Credentials: info.Password,
	}
	return errors.Trace(c.APICall(context.Background(), adminFacade, adminFacadeVersion, "", "Login", args, nil))
}

// APICall implements Caller over the websocket connection.
func (c *Conn) APICall(ctx context.Context, objType string, version int, id, req string, args, result interface{}) error {
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requestID++
	frame := request{
		RequestID: c.requestID,
		Type:      objType,
		Version:   version,
		ID:        id,
		Request:   req,
		Params:    args,
	}
	logger.Tracef("-> %s.%s(%d)", objType, req, frame.RequestID)
	if err := c.ws.WriteJSON(frame); err != nil {
		return errors.Annotatef(err, "sending %s.%s request", objType, req)
	}

	for {
		var resp response
		if err := c.ws.ReadJSON(&resp); err != nil {
			return errors.Annotatef(err, "reading %s.%s response", objType, req)
		}
		if resp.RequestID != frame.RequestID {
			logger.Debugf("discarding out-of-band response %d", resp.RequestID)
			continue
		}
		if resp.Error != "" {
			return &RequestError{Message: resp.Error, Code: resp.ErrorCode}
		}
		if result == nil {
			return nil
		}
		return errors.Trace(json.Unmarshal(resp.Response, result))
	}
}

// Close shuts down the connection.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return errors.Trace(c.ws.Close())
}
