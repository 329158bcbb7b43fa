// Copyright 2026 the Labor Stats Pipeline authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fetch downloads documents from the public data sources over HTTP.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opencensus.io/plugin/ochttp"
)

// ErrTransport is returned when the remote could not be reached, answered
// with a non-200 status, or returned more data than allowed.
var ErrTransport = errors.New("transport error")

// Client performs size-capped GET requests with a fixed User-Agent.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// New creates a client that identifies itself with userAgent. Requests are
// instrumented with opencensus.
func New(userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &ochttp.Transport{},
		},
		userAgent: userAgent,
	}
}

// Get downloads the document at u up to maxBytes. If the URL does not return
// a 200, an error is returned. If the process takes longer than the provided
// timeout, an error is returned. If more bytes remain after maxBytes, an error
// is returned. Every error wraps ErrTransport.
func (c *Client) Get(ctx context.Context, u, accept string, timeout time.Duration, maxBytes int64) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request %s: %w", ErrTransport, u, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to download %s: %w", ErrTransport, u, err)
	}
	defer resp.Body.Close()

	if code := resp.StatusCode; code != http.StatusOK {
		return nil, fmt.Errorf("%w: failed to download %s: status %d", ErrTransport, u, code)
	}

	var b bytes.Buffer
	r := &io.LimitedReader{R: resp.Body, N: maxBytes}
	if _, err := io.Copy(&b, r); err != nil {
		return nil, fmt.Errorf("%w: failed to download %s: %w", ErrTransport, u, err)
	}
	if r.N == 0 {
		// Check if there's more data to be read and return an error if so.
		if _, err := r.R.Read(make([]byte, 1)); !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: failed to read %s: response exceeds %d bytes", ErrTransport, u, maxBytes)
		}
	}

	return b.Bytes(), nil
}
