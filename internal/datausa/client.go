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

// Package datausa fetches national population figures from the DataUSA API.
package datausa

import (
	"context"
	"time"

	"github.com/laborstats/pipeline/internal/fetch"
)

// Config configures access to the population API.
type Config struct {
	URL string `env:"DATAUSA_URL, default=https://honolulu-api.datausa.io/tesseract/data.jsonrecords?cube=acs_yg_total_population_1&drilldowns=Year%2CNation&locale=en&measures=Population"`

	Timeout  time.Duration `env:"DATAUSA_TIMEOUT, default=1m"`
	MaxBytes int64         `env:"DATAUSA_MAX_BYTES, default=10485760"`
}

// Client fetches the population document.
type Client struct {
	fetcher *fetch.Client
	config  *Config
}

// NewClient creates a new population API client.
func NewClient(fetcher *fetch.Client, config *Config) *Client {
	return &Client{
		fetcher: fetcher,
		config:  config,
	}
}

// SourceURL is the URL the document is fetched from.
func (c *Client) SourceURL() string {
	return c.config.URL
}

// Fetch performs a single GET of the population document and returns the raw
// response body.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	return c.fetcher.Get(ctx, c.config.URL, "application/json", c.config.Timeout, c.config.MaxBytes)
}
