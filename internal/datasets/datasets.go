// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package datasets maps each client to its logical datasets and the remote
// sheet that backs each one.
package datasets

import (
	"errors"
	"fmt"
	"sort"

	"github.com/staranto/clientdash/internal/config"
)

// Logical dataset names used by the dashboard.
const (
	Orders  = "orders"
	Prices  = "prices"
	Catalog = "catalog"
)

var (
	ErrUnknownClient  = errors.New("unknown client")
	ErrUnknownDataset = errors.New("unknown dataset")
)

// Map is client -> dataset -> sheet id. It is read-only after construction.
type Map struct {
	clients map[string]map[string]string
}

// New copies m into a Map.
func New(m map[string]map[string]string) *Map {
	out := &Map{clients: make(map[string]map[string]string, len(m))}
	for client, sets := range m {
		cp := make(map[string]string, len(sets))
		for name, sheet := range sets {
			cp[name] = sheet
		}
		out.clients[client] = cp
	}
	return out
}

// Load builds the Map from the "clients" key of the loaded config.
func Load() (*Map, error) {
	var m map[string]map[string]string
	if err := config.Decode("clients", &m); err != nil {
		return nil, err
	}
	return New(m), nil
}

// Sheet returns the sheet id backing dataset for client.
func (m *Map) Sheet(client, dataset string) (string, error) {
	sets, ok := m.clients[client]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownClient, client)
	}
	sheet, ok := sets[dataset]
	if !ok || sheet == "" {
		return "", fmt.Errorf("%w: %s/%s", ErrUnknownDataset, client, dataset)
	}
	return sheet, nil
}

// Datasets returns the sorted dataset names configured for client.
func (m *Map) Datasets(client string) ([]string, error) {
	sets, ok := m.clients[client]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClient, client)
	}
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Clients returns the sorted client ids.
func (m *Map) Clients() []string {
	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
