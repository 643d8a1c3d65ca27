package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sizePtr(n int64) *int64 {
	return &n
}

func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

// bucketServer serves listing fixtures keyed by prefix.
type bucketServer struct {
	*httptest.Server

	mu       sync.Mutex
	bodies   map[string][]byte
	status   int
	requests []*http.Request
}

func newBucketServer(t *testing.T, bodies map[string][]byte) *bucketServer {
	t.Helper()
	bs := &bucketServer{bodies: bodies, status: http.StatusOK}
	bs.Server = httptest.NewServer(http.HandlerFunc(bs.serve))
	t.Cleanup(bs.Close)
	return bs
}

func (bs *bucketServer) serve(w http.ResponseWriter, r *http.Request) {
	bs.mu.Lock()
	bs.requests = append(bs.requests, r.Clone(context.Background()))
	status := bs.status
	body, ok := bs.bodies[r.URL.Query().Get("prefix")]
	bs.mu.Unlock()

	w.Header().Set("Content-Type", "application/xml")
	if status != http.StatusOK {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`))
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	_, _ = w.Write(body)
}

func (bs *bucketServer) setStatus(code int) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.status = code
}

func (bs *bucketServer) lastRequest(t *testing.T) *http.Request {
	t.Helper()
	bs.mu.Lock()
	defer bs.mu.Unlock()
	require.NotEmpty(t, bs.requests)
	return bs.requests[len(bs.requests)-1]
}

// config returns a path-style configuration pointing at the test server.
func (bs *bucketServer) config() *Config {
	host := strings.TrimPrefix(bs.URL, "http://")
	cfg := DefaultConfig()
	cfg.Bucket = "test-bucket"
	cfg.HostBase = host
	cfg.HostBucket = host + "/" + bucketPlaceholder
	cfg.UseHTTPS = false
	return cfg
}

// fakeFetcher returns canned listings and records the prefixes requested.
type fakeFetcher struct {
	mu       sync.Mutex
	listings map[string]*Listing
	err      error
	calls    []string
}

func (f *fakeFetcher) FetchListing(_ context.Context, prefix string) (*Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, prefix)
	if f.err != nil {
		return nil, f.err
	}
	if l, ok := f.listings[prefix]; ok {
		return l, nil
	}
	return &Listing{Prefix: prefix}, nil
}

func (f *fakeFetcher) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}
