package main

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// listBucketResult mirrors the parts of a ListObjectsV2 response we read.
type listBucketResult struct {
	XMLName        xml.Name       `xml:"ListBucketResult"`
	Prefix         string         `xml:"Prefix"`
	IsTruncated    bool           `xml:"IsTruncated"`
	Contents       []listContents `xml:"Contents"`
	CommonPrefixes []listPrefix   `xml:"CommonPrefixes"`
}

type listContents struct {
	Key          string  `xml:"Key"`
	LastModified string  `xml:"LastModified"`
	Size         *string `xml:"Size"`
}

type listPrefix struct {
	Prefix string `xml:"Prefix"`
}

// RESTFetcher lists the bucket through its anonymous REST endpoint.
type RESTFetcher struct {
	client    *http.Client
	bucketURL string
}

// NewRESTFetcher creates a fetcher for the bucket described by cfg
func NewRESTFetcher(cfg *Config) *RESTFetcher {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = cfg.Timeout
	return &RESTFetcher{
		client:    client,
		bucketURL: cfg.BucketURL(),
	}
}

// FetchListing issues one listing request for prefix. Continuation pages are
// not requested.
func (f *RESTFetcher) FetchListing(ctx context.Context, prefix string) (*Listing, error) {
	reqURL := ListingURL(f.bucketURL, prefix)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Op: "ListObjects", URL: reqURL, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Op: "ListObjects", URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{
			Op:         "ListObjects",
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("http status: %s", resp.Status),
		}
	}

	listing, err := parseListing(resp.Body)
	if err != nil {
		return nil, &FetchError{Op: "ListObjects", URL: reqURL, Err: err}
	}
	if listing.Prefix == "" {
		listing.Prefix = prefix
	}
	return listing, nil
}

// parseListing decodes a ListObjectsV2 XML document.
func parseListing(r io.Reader) (*Listing, error) {
	var doc listBucketResult
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedListing, err)
	}

	listing := &Listing{
		Prefix:    doc.Prefix,
		Truncated: doc.IsTruncated,
		Folders:   make([]Folder, 0, len(doc.CommonPrefixes)),
		Files:     make([]File, 0, len(doc.Contents)),
	}

	for _, p := range doc.CommonPrefixes {
		if p.Prefix == "" {
			continue
		}
		listing.Folders = append(listing.Folders, Folder{Key: p.Prefix})
	}

	for _, c := range doc.Contents {
		// Directory markers share the folder's key; they are not files.
		if c.Key == "" || IsFolderKey(c.Key) {
			continue
		}

		modified, err := time.Parse(time.RFC3339, strings.TrimSpace(c.LastModified))
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: last modified %q", ErrMalformedListing, c.Key, c.LastModified)
		}

		file := File{Key: c.Key, LastModified: modified}
		if c.Size != nil {
			size, err := strconv.ParseInt(strings.TrimSpace(*c.Size), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: key %q: size %q", ErrMalformedListing, c.Key, *c.Size)
			}
			file.Size = &size
		}
		listing.Files = append(listing.Files, file)
	}

	return listing, nil
}
