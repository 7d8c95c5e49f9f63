// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	src, err := New(ctx, Options{Type: "file", Dir: "testdata"})
	require.NoError(t, err)
	assert.IsType(t, &Dir{}, src)

	src, err = New(ctx, Options{Type: "http", Spreadsheet: "abc"})
	require.NoError(t, err)
	assert.IsType(t, &HTTP{}, src)

	_, err = New(ctx, Options{Type: "http"})
	assert.Error(t, err)

	_, err = New(ctx, Options{Type: "s3"})
	assert.Error(t, err)

	_, err = New(ctx, Options{Type: "ftp"})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestDir_Fetch(t *testing.T) {
	d := NewDir("testdata")

	b, err := d.Fetch(context.Background(), "Prices")
	require.NoError(t, err)

	tbl, err := Parse("Prices", b)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 3)
	assert.Equal(t, 1250.0, tbl.Rows[1]["Price"])

	_, err = d.Fetch(context.Background(), "Missing")
	assert.ErrorIs(t, err, ErrSheetNotFound)

	_, err = d.Fetch(context.Background(), "../Prices")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSheetNotFound)
}

func newTestHTTP(t *testing.T, h http.HandlerFunc) *HTTP {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	src := NewHTTP(Options{
		URL:         srv.URL + "/%s/export?sheet=%s",
		Spreadsheet: "sheet id",
		Token:       "tok",
		Retries:     2,
	})
	src.Client.RetryWaitMin = time.Millisecond
	src.Client.RetryWaitMax = 2 * time.Millisecond
	return src
}

func TestHTTP_Fetch(t *testing.T) {
	src := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sheet%20id/export", r.URL.EscapedPath())
		assert.Equal(t, "CDC Prices", r.URL.Query().Get("sheet"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, "Item,Price\nWidget,1\n")
	})

	b, err := src.Fetch(context.Background(), "CDC Prices")
	require.NoError(t, err)
	assert.Equal(t, "Item,Price\nWidget,1\n", string(b))
}

func TestHTTP_NotFound(t *testing.T) {
	src := newTestHTTP(t, func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})

	_, err := src.Fetch(context.Background(), "Nope")
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestHTTP_MaxBytes(t *testing.T) {
	body := "Item,Price\nWidget,1\n"
	tests := []struct {
		name    string
		limit   int64
		wantErr bool
	}{
		{"exact fit", int64(len(body)), false},
		{"one byte over", int64(len(body)) - 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newTestHTTP(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, body)
			})
			src.MaxBytes = tt.limit

			b, err := src.Fetch(context.Background(), "Prices")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTooLarge)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, body, string(b))
		})
	}
}

func TestHTTP_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	src := newTestHTTP(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "a\n1\n")
	})

	b, err := src.Fetch(context.Background(), "Orders")
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(b))
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTP_GivesUp(t *testing.T) {
	var calls atomic.Int32
	src := newTestHTTP(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := src.Fetch(context.Background(), "Orders")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSheetNotFound)
	assert.Equal(t, int32(3), calls.Load())
}

type fakeGetter struct {
	objects map[string]string
	err     error
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewBufferString(body))}, nil
}

func TestS3_Fetch(t *testing.T) {
	src := &S3{
		Client: &fakeGetter{objects: map[string]string{"dash/sheets/CDC Orders.csv": "id\n1\n"}},
		Bucket: "dash",
		Prefix: "sheets",
	}

	assert.Equal(t, "sheets/CDC Orders.csv", src.Key("CDC Orders"))

	b, err := src.Fetch(context.Background(), "CDC Orders")
	require.NoError(t, err)
	assert.Equal(t, "id\n1\n", string(b))

	_, err = src.Fetch(context.Background(), "CDC Prices")
	assert.ErrorIs(t, err, ErrSheetNotFound)

	src.Client = &fakeGetter{err: errors.New("denied")}
	_, err = src.Fetch(context.Background(), "CDC Orders")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSheetNotFound)
}
