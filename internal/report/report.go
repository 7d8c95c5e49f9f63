// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package report loads client datasets on behalf of a user, through the
// user's session cache.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"

	"github.com/staranto/clientdash/internal/access"
	"github.com/staranto/clientdash/internal/datasets"
	"github.com/staranto/clientdash/internal/memo"
	"github.com/staranto/clientdash/internal/source"
)

// LoadOp is the memo operation name for dataset loads.
const LoadOp = "report.load"

// Service joins the access table, the dataset map and the sheet source.
type Service struct {
	Access   *access.Table
	Datasets *datasets.Map
	Source   source.Source
	// TTL for loaded tables. Zero uses the session cache's default.
	TTL time.Duration
}

// Client is one entry of a user's overview.
type Client struct {
	Name     string   `json:"client"`
	Datasets []string `json:"datasets"`
}

// LoadCall is the memo call for one client dataset.
func LoadCall(client, dataset string) memo.Call {
	return memo.Call{
		Op:     LoadOp,
		Kwargs: map[string]any{"client": client, "dataset": dataset},
	}
}

// Load returns the parsed sheet behind client/dataset. The table is shared
// with the cache and must not be modified.
func (s *Service) Load(
	ctx context.Context,
	cache *memo.Cache,
	user access.User,
	client, dataset string,
) (*source.Table, error) {
	if !user.Permits(client) {
		return nil, fmt.Errorf("%w: %s", access.ErrClientNotPermitted, client)
	}

	sheet, err := s.Datasets.Sheet(client, dataset)
	if err != nil {
		return nil, err
	}

	return memo.GetOrCompute(ctx, cache, LoadCall(client, dataset), s.TTL,
		func(ctx context.Context) (*source.Table, error) {
			log.WithField("client", client).WithField("sheet", sheet).Info("fetching sheet")

			data, err := s.Source.Fetch(ctx, sheet)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch %s: %w", sheet, err)
			}
			return source.Parse(sheet, data)
		})
}

// Overview lists the user's permitted clients and their datasets, in the
// user's order. Clients missing from the dataset map are skipped.
func (s *Service) Overview(user access.User) []Client {
	out := make([]Client, 0, len(user.Clients))
	for _, c := range user.Clients {
		ds, err := s.Datasets.Datasets(c)
		if err != nil {
			log.WithField("user", user.Name).WithField("client", c).Warn("no datasets for client")
			continue
		}
		out = append(out, Client{Name: c, Datasets: ds})
	}
	return out
}

// Refresh drops the cached client/dataset so the next Load refetches. With
// both empty it clears the whole cache.
func Refresh(cache *memo.Cache, client, dataset string) {
	if client == "" && dataset == "" {
		cache.Clear()
		return
	}
	cache.Invalidate(LoadCall(client, dataset))
}
