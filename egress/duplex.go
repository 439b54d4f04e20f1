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
	"io"
	"net"

	"github.com/nabbar/g3egress/stats"
)

// TunneledDuplex is the opaque reader/writer pair returned by a
// successful connect flow. Each half already carries its own counter
// attachment; closing the duplex releases the underlying socket
// exactly once regardless of how many times Close is called.
type TunneledDuplex struct {
	Reader *stats.Reader
	Writer *stats.Writer

	conn net.Conn
}

func newDuplex(conn net.Conn, residual []byte, readSinks, writeSinks stats.SinkSet) *TunneledDuplex {
	return &TunneledDuplex{
		Reader: stats.NewReader(conn, residual, readSinks),
		Writer: stats.NewWriter(conn, writeSinks),
		conn:   conn,
	}
}

// Close releases the underlying OS socket. Safe to call more than once.
func (d *TunneledDuplex) Close() error {
	if d == nil || d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

var _ io.Closer = (*TunneledDuplex)(nil)
