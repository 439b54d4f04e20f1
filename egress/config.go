/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package egress

import (
	"github.com/nabbar/g3egress/atomic"
	"github.com/nabbar/g3egress/duration"
)

// EscaperConfig is the immutable per-instance configuration shared by
// every concurrent task routed through one escaper: the CONNECT
// negotiation timeout and header-size cap, the verbatim headers to
// append to every CONNECT request, and whether Proxy-Authorization is
// sent from the task's user identity.
type EscaperConfig struct {
	PeerNegotiationTimeout duration.Duration
	MaxConnectHeaderBytes  int
	AppendHeaders          []string
	PassProxyUserID        bool
}

// ConfigHolder is an atomically-swappable cell for an *EscaperConfig.
// A reload builds a new snapshot and stores it; tasks that already
// loaded the old snapshot run to completion against it.
type ConfigHolder struct {
	v atomic.Value[*EscaperConfig]
}

// NewConfigHolder wraps an initial snapshot.
func NewConfigHolder(cfg *EscaperConfig) *ConfigHolder {
	h := &ConfigHolder{v: atomic.NewValue[*EscaperConfig]()}
	h.v.Store(cfg)
	return h
}

// Load returns the currently active snapshot.
func (h *ConfigHolder) Load() *EscaperConfig {
	return h.v.Load()
}

// Store atomically replaces the active snapshot.
func (h *ConfigHolder) Store(cfg *EscaperConfig) {
	h.v.Store(cfg)
}
