package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/go-cleanhttp"
)

// OpenFunc hands an object URL to whatever displays it.
type OpenFunc func(url string) error

// OpenInBrowser opens url with the platform's default handler.
func OpenInBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return cmd.Process.Release()
}

// Downloader copies public objects to the local filesystem.
type Downloader struct {
	client    *http.Client
	bucketURL string
	dir       string
}

// NewDownloader creates a downloader writing into dir.
func NewDownloader(cfg *Config, dir string) *Downloader {
	client := cleanhttp.DefaultClient()
	client.Timeout = cfg.Timeout
	return &Downloader{
		client:    client,
		bucketURL: cfg.BucketURL(),
		dir:       dir,
	}
}

// Download fetches key and stores it under its display name. It returns the
// local path written.
func (d *Downloader) Download(ctx context.Context, key string) (string, error) {
	objURL := ObjectURL(d.bucketURL, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, objURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for '%s': %w", key, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get object '%s': %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("failed to get object '%s': http status: %s", key, resp.Status)
	}

	target := filepath.Join(d.dir, DisplayName(key))
	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to write file '%s': %w", target, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("failed to write file '%s': %w", target, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write file '%s': %w", target, err)
	}
	return target, nil
}
