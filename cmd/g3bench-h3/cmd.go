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

package main

import (
	"io"

	"github.com/spf13/cobra"
)

// exitError carries the process exit code alongside the reported
// error: 1 for a rejected argument, 2 for a network/transport failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func argError(err error) error { return &exitError{code: 1, err: err} }

func networkError(err error) error { return &exitError{code: 2, err: err} }

// newRootCommand builds the g3bench-h3 command tree: a single-shot
// HTTP/3-over-QUIC request runner driven by the flags below.
func newRootCommand(stdout io.Writer) *cobra.Command {
	var (
		rawMethod         string
		rawLocalAddr      string
		poolSize          int
		noMultiplex       bool
		rawOkStatus       string
		rawTimeout        string
		rawConnectTimeout string
	)

	cmd := &cobra.Command{
		Use:           "g3bench-h3 <uri>",
		Short:         "Benchmark a single upstream over HTTP/3",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newBenchArgs(args[0], rawMethod, rawLocalAddr, poolSize, noMultiplex, rawOkStatus, rawTimeout, rawConnectTimeout)
			if err != nil {
				return argError(err)
			}
			return runBench(cmd.Context(), a, stdout)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&poolSize, "connection-pool", "C", 0, "number of pooled underlying h3 connections")
	flags.StringVarP(&rawMethod, "method", "m", "GET", "request method (GET, HEAD)")
	flags.StringVarP(&rawLocalAddr, "local-address", "B", "", "local IP address to bind to")
	flags.BoolVar(&noMultiplex, "no-multiplex", false, "disable h3 connection multiplexing")
	flags.StringVar(&rawOkStatus, "ok-status", "", "only treat this status code as success")
	flags.StringVar(&rawTimeout, "timeout", defaultTimeout, "http response timeout")
	flags.StringVar(&rawConnectTimeout, "connect-timeout", defaultConnect, "timeout for connection to next peer")

	cmd.MarkFlagsMutuallyExclusive("connection-pool", "no-multiplex")

	return cmd
}
