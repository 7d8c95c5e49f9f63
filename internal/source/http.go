// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/apex/log"
	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	// DefaultMaxBytes caps the size of one sheet export.
	DefaultMaxBytes = 32 << 20
	// DefaultTimeout bounds one attempt of a sheet fetch.
	DefaultTimeout = 60 * time.Second
)

// ErrTooLarge is returned when a sheet export exceeds MaxBytes.
var ErrTooLarge = errors.New("sheet export too large")

// HTTP fetches sheets from a CSV export URL.
type HTTP struct {
	Client      *retryablehttp.Client
	URL         string
	Spreadsheet string
	Token       string
	// MaxBytes caps the response body. Zero uses DefaultMaxBytes.
	MaxBytes int64
}

// NewHTTP builds an HTTP source. Transient failures are retried up to
// o.Retries times.
func NewHTTP(o Options) *HTTP {
	client := retryablehttp.NewClient()
	client.HTTPClient = cleanhttp.DefaultPooledClient()
	client.HTTPClient.Timeout = DefaultTimeout
	client.RetryMax = o.Retries
	client.Logger = leveled{}

	tmpl := o.URL
	if tmpl == "" {
		tmpl = DefaultURL
	}

	return &HTTP{
		Client:      client,
		URL:         tmpl,
		Spreadsheet: o.Spreadsheet,
		Token:       o.Token,
	}
}

// SheetURL expands the URL template for sheet.
func (h *HTTP) SheetURL(sheet string) string {
	return fmt.Sprintf(h.URL, url.PathEscape(h.Spreadsheet), url.QueryEscape(sheet))
}

func (h *HTTP) Fetch(ctx context.Context, sheet string) ([]byte, error) {
	u := h.SheetURL(sheet)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status fetching %s: %s", sheet, resp.Status)
	}

	limit := h.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	doc, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(doc)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, sheet, limit)
	}

	return doc, nil
}

// leveled routes retryablehttp logging through apex/log.
type leveled struct{}

func (leveled) Error(msg string, kv ...any) { fields(kv).Error(msg) }
func (leveled) Info(msg string, kv ...any)  { fields(kv).Debug(msg) }
func (leveled) Debug(msg string, kv ...any) { fields(kv).Debug(msg) }
func (leveled) Warn(msg string, kv ...any)  { fields(kv).Warn(msg) }

func fields(kv []any) *log.Entry {
	f := log.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return log.WithFields(f)
}
