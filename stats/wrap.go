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

import "io"

// Reader wraps an io.Reader so every successful Read fans its length
// out to a fixed sink list. It carries no per-call allocation once any
// residual prefix has drained.
type Reader struct {
	r        io.Reader
	residual []byte
	sinks    SinkSet
}

// NewReader wraps r with sinks. If residual is non-empty, its length is
// credited to the read-side sinks exactly once, before the first live
// Read; the bytes themselves are then served ahead of r without being
// credited a second time as they are drained.
func NewReader(r io.Reader, residual []byte, sinks SinkSet) *Reader {
	w := &Reader{r: r, sinks: sinks}

	if len(residual) > 0 {
		w.residual = append([]byte(nil), residual...)
		sinks.AddRead(uint64(len(residual)))
	}

	return w
}

func (w *Reader) Read(p []byte) (int, error) {
	if len(w.residual) > 0 {
		n := copy(p, w.residual)
		w.residual = w.residual[n:]
		return n, nil
	}

	n, err := w.r.Read(p)
	if n > 0 {
		w.sinks.AddRead(uint64(n))
	}
	return n, err
}

// Writer wraps an io.Writer so every successful Write fans its length
// out to a fixed sink list.
type Writer struct {
	w     io.Writer
	sinks SinkSet
}

// NewWriter wraps w with sinks.
func NewWriter(w io.Writer, sinks SinkSet) *Writer {
	return &Writer{w: w, sinks: sinks}
}

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	if n > 0 {
		w.sinks.AddWrite(uint64(n))
	}
	return n, err
}
