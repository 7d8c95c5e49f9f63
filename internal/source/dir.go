// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir reads sheets from <Root>/<sheet>.csv. Used for development and tests.
type Dir struct {
	Root string
}

func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

func (d *Dir) Fetch(ctx context.Context, sheet string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sheet == "" || sheet != filepath.Base(sheet) {
		return nil, fmt.Errorf("invalid sheet name %q", sheet)
	}

	b, err := os.ReadFile(filepath.Join(d.Root, sheet+".csv"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	return b, nil
}
