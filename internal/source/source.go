// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"

	"github.com/staranto/clientdash/internal/config"
)

// ErrSheetNotFound is returned when the remote store has no such sheet.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrUnknownType is returned by New for an unsupported source.type.
var ErrUnknownType = errors.New("unknown source type")

// DefaultURL is a Google Sheets CSV export. The first verb is the
// spreadsheet id, the second the sheet name.
const DefaultURL = "https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s"

// Source returns the CSV body of a sheet.
type Source interface {
	Fetch(ctx context.Context, sheet string) ([]byte, error)
}

// Options select and configure a Source.
type Options struct {
	Type        string
	Spreadsheet string
	URL         string
	Token       string
	Retries     int
	Bucket      string
	Region      string
	Prefix      string
	Profile     string
	Endpoint    string
	Dir         string
}

// OptionsFromConfig reads the "source" block of the loaded config.
func OptionsFromConfig() Options {
	var o Options
	o.Type, _ = config.GetString("source.type", "http")
	o.Spreadsheet, _ = config.GetString("source.spreadsheet", "")
	o.URL, _ = config.GetString("source.url", DefaultURL)
	o.Token, _ = config.GetString("source.token", "")
	o.Retries, _ = config.GetInt("source.retries", 3) //nolint:mnd
	o.Bucket, _ = config.GetString("source.bucket", "")
	o.Region, _ = config.GetString("source.region", "")
	o.Prefix, _ = config.GetString("source.prefix", "")
	o.Profile, _ = config.GetString("source.profile", "")
	o.Endpoint, _ = config.GetString("source.endpoint", "")
	o.Dir, _ = config.GetString("source.dir", ".")
	return o
}

// New builds the Source named by o.Type.
func New(ctx context.Context, o Options) (Source, error) {
	log.WithField("type", o.Type).Debug("source: init")

	switch o.Type {
	case "", "http":
		if o.Spreadsheet == "" {
			return nil, errors.New("source.spreadsheet is not set")
		}
		return NewHTTP(o), nil
	case "s3":
		return NewS3(ctx, o)
	case "file", "dir":
		return NewDir(o.Dir), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownType, o.Type)
}
