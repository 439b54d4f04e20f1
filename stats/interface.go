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

// Package stats wraps reader/writer halves of an egress connection so
// every transferred byte fans out to a fixed small set of counters
// (escaper-global, task-local, per-user) instead of a dynamic dispatch
// chain.
package stats

// Sink is the minimal capability a byte counter must expose. Both
// methods accept non-negative counts and must be safe for concurrent
// use: counters are shared across workers.
type Sink interface {
	AddReadBytes(n uint64)
	AddWriteBytes(n uint64)
}

// SinkSet is a small fixed-capacity collection of sinks, fixed at wrap
// time. It is never a linked chain: AddRead/AddWrite fan out to every
// member in a single loop.
type SinkSet []Sink

// AddRead fans n out to every sink's AddReadBytes.
func (s SinkSet) AddRead(n uint64) {
	if n == 0 {
		return
	}
	for _, sk := range s {
		sk.AddReadBytes(n)
	}
}

// AddWrite fans n out to every sink's AddWriteBytes.
func (s SinkSet) AddWrite(n uint64) {
	if n == 0 {
		return
	}
	for _, sk := range s {
		sk.AddWriteBytes(n)
	}
}
