package main

import "sort"

// Unbounded disables pagination: every entry lands on a single page.
const Unbounded = 0

// PageOptions controls how a listing is turned into a page.
type PageOptions struct {
	PageSize int
	Exclude  []string
}

// Page is the slice of a listing selected for display.
type Page struct {
	Folders    []Folder
	Files      []File
	TotalItems int
	TotalPages int
}

// ExcludeFiles drops files whose key exactly matches one of names.
// Folders are never excluded.
func ExcludeFiles(files []File, names []string) []File {
	if len(names) == 0 {
		return append([]File(nil), files...)
	}
	excluded := make(map[string]struct{}, len(names))
	for _, n := range names {
		excluded[n] = struct{}{}
	}

	out := make([]File, 0, len(files))
	for _, f := range files {
		if _, ok := excluded[f.Key]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

// SortByRecency orders files newest first.
func SortByRecency(files []File) {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].LastModified.After(files[j].LastModified)
	})
}

// TotalPages returns ceil(items/pageSize), or 0 when there are no items.
func TotalPages(items, pageSize int) int {
	if items <= 0 {
		return 0
	}
	if pageSize <= Unbounded {
		return 1
	}
	return (items + pageSize - 1) / pageSize
}

// BuildPage merges, filters, sorts and windows a listing for page (1-based).
// Folders keep the listing order and come first; a page may hold both
// trailing folders and leading files. A page past the end is empty.
func BuildPage(listing *Listing, page int, opts PageOptions) Page {
	folders := append([]Folder(nil), listing.Folders...)
	files := ExcludeFiles(listing.Files, opts.Exclude)
	SortByRecency(files)

	total := len(folders) + len(files)
	result := Page{
		TotalItems: total,
		TotalPages: TotalPages(total, opts.PageSize),
	}

	if opts.PageSize <= Unbounded {
		result.Folders = folders
		result.Files = files
		return result
	}

	if page < 1 {
		page = 1
	}
	start := (page - 1) * opts.PageSize
	end := start + opts.PageSize

	result.Folders = window(folders, start, end)
	result.Files = window(files, start-len(folders), end-len(folders))
	return result
}

// window returns s[start:end] with both bounds clamped to [0, len(s)].
func window[T any](s []T, start, end int) []T {
	start = clamp(start, 0, len(s))
	end = clamp(end, 0, len(s))
	if start >= end {
		return []T{}
	}
	return s[start:end]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
