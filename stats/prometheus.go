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

import "github.com/prometheus/client_golang/prometheus"

// prometheusSink adapts a pair of prometheus.Counter instruments to the
// Sink capability, so orchestrator-level byte accounting can be scraped
// alongside any other Prometheus instrumentation in the embedding
// program.
type prometheusSink struct {
	read  prometheus.Counter
	write prometheus.Counter
}

// NewPrometheusSink registers (or reuses, if already registered) two
// counters under the given namespace/subsystem and returns a Sink that
// adds to them.
func NewPrometheusSink(reg prometheus.Registerer, namespace, subsystem string) (Sink, error) {
	read := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "read_bytes_total",
		Help:      "Total bytes read through the egress duplex.",
	})
	write := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "write_bytes_total",
		Help:      "Total bytes written through the egress duplex.",
	})

	if err := reg.Register(read); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			read = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}

	if err := reg.Register(write); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			write = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}

	return &prometheusSink{read: read, write: write}, nil
}

func (p *prometheusSink) AddReadBytes(n uint64) {
	p.read.Add(float64(n))
}

func (p *prometheusSink) AddWriteBytes(n uint64) {
	p.write.Add(float64(n))
}
