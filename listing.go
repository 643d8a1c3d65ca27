package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Delimiter separates path segments in object keys.
const Delimiter = "/"

// ErrMalformedListing marks a listing body that could not be decoded.
var ErrMalformedListing = errors.New("malformed listing response")

// Folder is a common prefix returned by a delimited listing. Its key always
// ends with the delimiter.
type Folder struct {
	Key string
}

// File is an object directly under the listed prefix. Size is nil when the
// listing did not report one.
type File struct {
	Key          string
	LastModified time.Time
	Size         *int64
}

// Listing is one parsed listing response.
type Listing struct {
	Prefix    string
	Folders   []Folder
	Files     []File
	Truncated bool
}

// Fetcher retrieves the delimited listing for a prefix.
type Fetcher interface {
	FetchListing(ctx context.Context, prefix string) (*Listing, error)
}

// FetchError is the single failure kind of a fetch: a non-2xx status, a
// transport failure, or an undecodable body.
type FetchError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Error fetching objects: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("Error fetching objects: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ListingURL builds the ListObjectsV2 request for prefix against bucketURL.
func ListingURL(bucketURL, prefix string) string {
	var b strings.Builder
	b.WriteString(bucketURL)
	b.WriteString("?list-type=2&")
	if prefix != "" {
		b.WriteString("prefix=")
		b.WriteString(url.QueryEscape(prefix))
		b.WriteString("&")
	}
	b.WriteString("delimiter=%2F")
	return b.String()
}

// ObjectURL returns the public URL of key inside the bucket.
func ObjectURL(bucketURL, key string) string {
	segments := strings.Split(key, Delimiter)
	for i, s := range segments {
		// S3 decodes a literal '+' in the path as a space.
		segments[i] = strings.ReplaceAll(url.PathEscape(s), "+", "%2B")
	}
	return bucketURL + strings.Join(segments, Delimiter)
}

// IsFolderKey reports whether key names a pseudo-folder.
func IsFolderKey(key string) bool {
	return strings.HasSuffix(key, Delimiter)
}

// NewFetcher builds the listing backend selected in cfg.
func NewFetcher(ctx context.Context, cfg *Config) (Fetcher, error) {
	switch cfg.Backend {
	case BackendSDK:
		return NewS3Client(ctx, cfg)
	case BackendREST, "":
		return NewRESTFetcher(cfg), nil
	}
	return nil, &ConfigError{Field: "backend", Message: fmt.Sprintf("unknown backend %q", cfg.Backend)}
}
