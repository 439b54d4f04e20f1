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

package tlsengine

import (
	"github.com/nabbar/g3egress/atomic"
	"github.com/nabbar/g3egress/certificates"
	"github.com/nabbar/g3egress/duration"
)

// TlsClientConfig is the immutable, shareable configuration for one
// outbound TLS leg: the underlying certificate/cipher/version policy,
// the ALPN protocols to offer, and the handshake deadline. Replacement
// on reload happens by building a new value and swapping it into a
// ConfigHolder; existing holders of the old value keep it until they
// finish.
type TlsClientConfig struct {
	Certs            certificates.TLSConfig
	ALPN             []string
	HandshakeTimeout duration.Duration
}

// ConfigHolder is an atomically-swappable cell for a *TlsClientConfig,
// mirroring the teacher's dns-mapper config cell: readers always see a
// complete, consistent snapshot, and a reload is a single pointer
// store that never blocks a concurrent read.
type ConfigHolder struct {
	v atomic.Value[*TlsClientConfig]
}

// NewConfigHolder wraps an initial snapshot.
func NewConfigHolder(cfg *TlsClientConfig) *ConfigHolder {
	h := &ConfigHolder{v: atomic.NewValue[*TlsClientConfig]()}
	h.v.Store(cfg)
	return h
}

// Load returns the currently active snapshot.
func (h *ConfigHolder) Load() *TlsClientConfig {
	return h.v.Load()
}

// Store atomically replaces the active snapshot. In-flight handshakes
// that already called Load keep their own reference.
func (h *ConfigHolder) Store(cfg *TlsClientConfig) {
	h.v.Store(cfg)
}
