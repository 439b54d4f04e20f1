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

package stats

import "sync/atomic"

// Counter is a monotonic, never-decremented byte counter backed by
// atomic fetch-add. It satisfies Sink directly.
type Counter struct {
	read  atomic.Uint64
	write atomic.Uint64
}

// NewCounter returns a ready-to-use, zeroed Counter.
func NewCounter() *Counter {
	return &Counter{}
}

func (c *Counter) AddReadBytes(n uint64) {
	c.read.Add(n)
}

func (c *Counter) AddWriteBytes(n uint64) {
	c.write.Add(n)
}

// ReadBytes returns the current read total.
func (c *Counter) ReadBytes() uint64 {
	return c.read.Load()
}

// WriteBytes returns the current write total.
func (c *Counter) WriteBytes() uint64 {
	return c.write.Load()
}
