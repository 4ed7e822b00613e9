// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package api provides the minimal client-side surface needed to read
// model status from a controller: a websocket RPC connection and a
// facade client for the Client.FullStatus call.
package api

import (
	"context"

	"github.com/juju/errors"

	"github.com/juju/waitfor/params"
)

const (
	clientFacade        = "Client"
	clientFacadeVersion = 6
)

// Caller makes RPC calls to a controller facade.
type Caller interface {
	// APICall makes a call to the API server with the given object
	// type, facade version, object id, request method and parameters.
	// The response is unmarshalled into the response argument.
	APICall(ctx context.Context, objType string, version int, id, request string, args, response interface{}) error
}

// Client provides access to the Client API facade.
type Client struct {
	caller Caller
}

// NewClient creates a new client-side Client facade.
func NewClient(caller Caller) *Client {
	if caller == nil {
		panic("caller is nil")
	}
	return &Client{caller: caller}
}

// FullStatus returns the model's status, optionally filtered by the
// given patterns.
func (c *Client) FullStatus(ctx context.Context, patterns []string) (*params.FullStatus, error) {
	args := params.StatusParams{Patterns: patterns}
	var result params.FullStatus
	if err := c.caller.APICall(ctx, clientFacade, clientFacadeVersion, "", "FullStatus", args, &result); err != nil {
		return nil, errors.Trace(err)
	}
	return &result, nil
}
