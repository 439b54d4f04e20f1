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

package peer

import (
	"math/rand/v2"
	"net/netip"
)

// Endpoint is one concrete network address a dialer can connect to.
type Endpoint struct {
	addr netip.AddrPort
}

// NewEndpoint wraps a resolved address/port pair as an Endpoint.
func NewEndpoint(addr netip.AddrPort) Endpoint {
	return Endpoint{addr: addr}
}

// AddrPort returns the wrapped address.
func (e Endpoint) AddrPort() netip.AddrPort {
	return e.addr
}

// String implements fmt.Stringer.
func (e Endpoint) String() string {
	return e.addr.String()
}

// IsValid reports whether the endpoint carries a usable address.
func (e Endpoint) IsValid() bool {
	return e.addr.IsValid()
}

// RandSource is the injectable randomness contract used by Select. Its
// single method matches math/rand/v2.Rand.IntN, so *rand.Rand satisfies
// it directly; tests supply a fixed-seed *rand.Rand or a stub to get
// deterministic picks.
type RandSource interface {
	IntN(n int) int
}

// DefaultRandSource returns a *rand.Rand seeded from the runtime's
// default source, suitable for production use.
func DefaultRandSource() RandSource {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// WeightedEndpoint pairs an Endpoint with its positive selection weight.
type WeightedEndpoint struct {
	Endpoint Endpoint
	Weight   uint32
}

// ResolvedPeerSet is the ordered, weighted collection of candidate
// endpoints produced by the external resolver.
type ResolvedPeerSet []WeightedEndpoint

// Select picks one endpoint weighted by Weight. Equal weights resolve
// deterministically for a given src's state. An empty set fails with
// ErrorNoPeerAvailable.
func (s ResolvedPeerSet) Select(src RandSource) (Endpoint, error) {
	var total uint64

	for _, w := range s {
		total += uint64(w.Weight)
	}

	if len(s) == 0 || total == 0 {
		return Endpoint{}, ErrorNoPeerAvailable.Error(nil)
	}

	if src == nil {
		src = DefaultRandSource()
	}

	pick := uint64(src.IntN(int(total)))

	var cum uint64
	for _, w := range s {
		cum += uint64(w.Weight)
		if pick < cum {
			return w.Endpoint, nil
		}
	}

	// Unreachable given total > pick by construction; kept as a safe
	// fallback rather than a panic.
	return s[len(s)-1].Endpoint, nil
}

// Len reports the number of candidate endpoints.
func (s ResolvedPeerSet) Len() int {
	return len(s)
}
