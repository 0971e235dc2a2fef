// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rpcbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teradata-labs/loom-assistant/internal/csync"
	"github.com/teradata-labs/loom-assistant/internal/log"
	"github.com/teradata-labs/loom-assistant/pkg/workspace"
)

// ErrTimeout is returned by Call when a request outlives its deadline
// without a matching response.
var ErrTimeout = errors.New("rpc: request timed out")

// DefaultRequestTimeout is the per-request timeout NewBridge uses when
// given none. Call always applies the bridge's timeout; an earlier
// deadline on the caller's context still ends the call first.
const DefaultRequestTimeout = 30 * time.Second

// DefaultRateLimit bounds how many inbound messages per second a single
// client connection may deliver before the bridge starts dropping them.
const (
	DefaultRateLimit = 50.0
	DefaultRateBurst = 100
)

type pendingCall struct {
	resp chan envelope
}

type client struct {
	id      string
	conn    *websocket.Conn
	limiter *rate.Limiter
	pending *csync.Map[string, pendingCall]
}

// Bridge is the RPC Bridge (C9): it owns one *websocket.Conn per connected
// client and satisfies workspace.RPCCaller for the Workspace Layer.
type Bridge struct {
	clients        *csync.Map[string, *client]
	requestTimeout time.Duration
	rateLimit      float64
	rateBurst      int
}

var _ workspace.RPCCaller = (*Bridge)(nil)

// NewBridge builds an RPC Bridge. requestTimeout <= 0 uses
// DefaultRequestTimeout; rateLimit/rateBurst <= 0 use the package defaults.
func NewBridge(requestTimeout time.Duration, rateLimit float64, rateBurst int) *Bridge {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}
	if rateBurst <= 0 {
		rateBurst = DefaultRateBurst
	}
	return &Bridge{
		clients:        csync.NewMap[string, *client](),
		requestTimeout: requestTimeout,
		rateLimit:      rateLimit,
		rateBurst:      rateBurst,
	}
}

// Accept upgrades r to a WebSocket connection, registers clientID, and
// blocks running the read loop until the connection closes or ctx is
// cancelled. Any request still pending for clientID when this returns is
// failed with ErrConnectionLost.
func (b *Bridge) Accept(ctx context.Context, w http.ResponseWriter, r *http.Request, clientID string) error {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return fmt.Errorf("rpc bridge: accept %q: %w", clientID, err)
	}
	defer conn.CloseNow()

	c := &client{
		id:      clientID,
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(b.rateLimit), b.rateBurst),
		pending: csync.NewMap[string, pendingCall](),
	}
	b.clients.Set(clientID, c)
	defer b.disconnect(c)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		}
		if !c.limiter.Allow() {
			log.Warn("rpc bridge: dropping message over rate limit", zap.String("clientId", clientID))
			continue
		}
		b.handleInbound(c, data)
	}
}

func (b *Bridge) handleInbound(c *client, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn("rpc bridge: malformed message", zap.String("clientId", c.id), zap.Error(err))
		return
	}
	pc, ok := c.pending.Get(env.ID)
	if !ok {
		return
	}
	c.pending.Delete(env.ID)
	pc.resp <- env
}

func (b *Bridge) disconnect(c *client) {
	b.clients.Delete(c.id)
	for id, pc := range c.pending.Seq2() {
		c.pending.Delete(id)
		pc.resp <- envelope{ID: id, Error: &wireError{Code: "ConnectionLost", Message: workspace.ErrConnectionLost.Error()}}
	}
}

// Call implements workspace.RPCCaller: it sends a request to clientID and
// blocks until a matching response arrives, ctx is cancelled, or the
// request's own timeout elapses.
func (b *Bridge) Call(ctx context.Context, clientID, method string, params interface{}, result interface{}) error {
	c, ok := b.clients.Get(clientID)
	if !ok {
		return workspace.ErrConnectionLost
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("rpc bridge: marshal params: %w", err)
	}

	id := uuid.NewString()
	pc := pendingCall{resp: make(chan envelope, 1)}
	c.pending.Set(id, pc)

	req := envelope{ID: id, Method: method, Params: paramsJSON}
	reqJSON, err := json.Marshal(req)
	if err != nil {
		c.pending.Delete(id)
		return fmt.Errorf("rpc bridge: marshal request: %w", err)
	}

	if err := c.conn.Write(ctx, websocket.MessageText, reqJSON); err != nil {
		c.pending.Delete(id)
		return fmt.Errorf("rpc bridge: write to %q: %w", clientID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.requestTimeout)
	defer cancel()

	select {
	case resp := <-pc.resp:
		if resp.Error != nil {
			return fmt.Errorf("rpc bridge: %s: %s", resp.Error.Code, resp.Error.Message)
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("rpc bridge: unmarshal result: %w", err)
			}
		}
		return nil
	case <-ctx.Done():
		c.pending.Delete(id)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}

// IsConnected implements workspace.RPCCaller.
func (b *Bridge) IsConnected(clientID string) bool {
	_, ok := b.clients.Get(clientID)
	return ok
}

// Count returns the number of currently connected clients, for the
// rpc_clients_connected gauge.
func (b *Bridge) Count() int {
	n := 0
	for range b.clients.Seq2() {
		n++
	}
	return n
}
