package main

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keysOf(files []File) []string {
	keys := make([]string, len(files))
	for i, f := range files {
		keys[i] = f.Key
	}
	return keys
}

func folderKeys(folders []Folder) []string {
	keys := make([]string, len(folders))
	for i, f := range folders {
		keys[i] = f.Key
	}
	return keys
}

// syntheticListing builds nf folders and nfiles files, file i modified i
// minutes after a fixed base time.
func syntheticListing(nf, nfiles int) *Listing {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := &Listing{}
	for i := 0; i < nf; i++ {
		l.Folders = append(l.Folders, Folder{Key: fmt.Sprintf("f%02d/", i)})
	}
	for i := 0; i < nfiles; i++ {
		l.Files = append(l.Files, File{
			Key:          fmt.Sprintf("file%02d.txt", i),
			LastModified: base.Add(time.Duration(i) * time.Minute),
			Size:         sizePtr(int64(i)),
		})
	}
	return l
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		items, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{0, Unbounded, 0},
		{42, Unbounded, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d items size %d", tt.items, tt.size), func(t *testing.T) {
			assert.Equal(t, tt.want, TotalPages(tt.items, tt.size))
		})
	}
}

func TestExcludeFiles(t *testing.T) {
	files := []File{
		{Key: "index.html"},
		{Key: "s3.js"},
		{Key: "docs/index.html"},
		{Key: "INDEX.HTML"},
		{Key: "dark-mode.css"},
		{Key: "download-removebg-preview.png"},
		{Key: "images-removebg-preview.png"},
		{Key: "notes.txt"},
	}

	got := ExcludeFiles(files, DefaultExclude)
	assert.Equal(t, []string{"docs/index.html", "INDEX.HTML", "notes.txt"}, keysOf(got))
	assert.Len(t, files, 8, "input is not modified")

	assert.Len(t, ExcludeFiles(files, nil), 8)
}

func TestSortByRecency(t *testing.T) {
	files := []File{
		{Key: "old", LastModified: at(t, "2023-01-01T00:00:00Z")},
		{Key: "new", LastModified: at(t, "2024-06-01T00:00:00Z")},
		{Key: "mid", LastModified: at(t, "2024-01-01T00:00:00Z")},
	}
	SortByRecency(files)
	assert.Equal(t, []string{"new", "mid", "old"}, keysOf(files))
}

func TestBuildPage(t *testing.T) {
	t.Run("root scenario", func(t *testing.T) {
		listing := &Listing{
			Folders: []Folder{{Key: "a/"}, {Key: "b/"}},
			Files: []File{
				{Key: "x.txt", LastModified: at(t, "2024-01-01T10:00:00Z"), Size: sizePtr(2048)},
				{Key: "y.txt", LastModified: at(t, "2024-01-02T10:00:00Z")},
				{Key: "index.html", LastModified: at(t, "2024-01-03T10:00:00Z"), Size: sizePtr(512)},
			},
		}

		page := BuildPage(listing, 1, PageOptions{PageSize: 10, Exclude: DefaultExclude})
		assert.Equal(t, []string{"a/", "b/"}, folderKeys(page.Folders))
		assert.Equal(t, []string{"y.txt", "x.txt"}, keysOf(page.Files))
		assert.Equal(t, 4, page.TotalItems)
		assert.Equal(t, 1, page.TotalPages)
	})

	t.Run("folders keep listing order", func(t *testing.T) {
		listing := &Listing{Folders: []Folder{{Key: "zeta/"}, {Key: "alpha/"}}}
		page := BuildPage(listing, 1, PageOptions{PageSize: 10})
		assert.Equal(t, []string{"zeta/", "alpha/"}, folderKeys(page.Folders))
	})

	t.Run("page straddles folders and files", func(t *testing.T) {
		listing := syntheticListing(3, 12)
		opts := PageOptions{PageSize: 10}

		first := BuildPage(listing, 1, opts)
		assert.Equal(t, 2, first.TotalPages)
		assert.Len(t, first.Folders, 3)
		assert.Equal(t, []string{"file11.txt", "file10.txt", "file09.txt", "file08.txt", "file07.txt", "file06.txt", "file05.txt"}, keysOf(first.Files))

		second := BuildPage(listing, 2, opts)
		assert.Empty(t, second.Folders)
		assert.Equal(t, []string{"file04.txt", "file03.txt", "file02.txt", "file01.txt", "file00.txt"}, keysOf(second.Files))
	})

	t.Run("folders fill whole pages before files", func(t *testing.T) {
		listing := syntheticListing(15, 4)
		opts := PageOptions{PageSize: 10}

		first := BuildPage(listing, 1, opts)
		assert.Len(t, first.Folders, 10)
		assert.Empty(t, first.Files)

		second := BuildPage(listing, 2, opts)
		assert.Len(t, second.Folders, 5)
		assert.Len(t, second.Files, 4)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		page := BuildPage(syntheticListing(1, 2), 3, PageOptions{PageSize: 10})
		assert.Equal(t, 1, page.TotalPages)
		assert.Empty(t, page.Folders)
		assert.Empty(t, page.Files)
	})

	t.Run("empty listing has zero pages", func(t *testing.T) {
		page := BuildPage(&Listing{}, 1, PageOptions{PageSize: 10})
		assert.Zero(t, page.TotalPages)
		assert.Zero(t, page.TotalItems)
	})

	t.Run("unbounded returns everything", func(t *testing.T) {
		page := BuildPage(syntheticListing(7, 30), 5, PageOptions{PageSize: Unbounded})
		assert.Len(t, page.Folders, 7)
		assert.Len(t, page.Files, 30)
		assert.Equal(t, 1, page.TotalPages)
	})

	t.Run("every page is sorted newest first", func(t *testing.T) {
		listing := syntheticListing(2, 37)
		for i, j := 0, len(listing.Files)-1; i < j; i, j = i+1, j-1 {
			listing.Files[i], listing.Files[j] = listing.Files[j], listing.Files[i]
		}
		opts := PageOptions{PageSize: 10}

		var all []File
		for p := 1; p <= TotalPages(39, 10); p++ {
			all = append(all, BuildPage(listing, p, opts).Files...)
		}
		require.Len(t, all, 37)
		for i := 1; i < len(all); i++ {
			assert.False(t, all[i].LastModified.After(all[i-1].LastModified))
		}
	})
}
