package main

import (
	"fmt"
	"strings"
	"time"
)

const (
	FolderIcon = "📁"
	FileIcon   = "📄"
	HomeLabel  = "Home"

	unknownSize = "Unknown"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// RowKind tells folder rows from file rows.
type RowKind int

const (
	RowFolder RowKind = iota
	RowFile
)

// Row is one line of the listing table.
type Row struct {
	Kind     RowKind
	Key      string
	Name     string
	Icon     string
	Modified string
	Size     string
	Hidden   bool

	LastModified time.Time
}

// Crumb is one breadcrumb segment. Path is the prefix it navigates to.
type Crumb struct {
	Label  string
	Path   string
	Active bool
}

// Pager describes the pagination controls.
type Pager struct {
	Visible      bool
	Label        string
	PrevDisabled bool
	NextDisabled bool
}

// RenderPlan is everything an adapter needs to draw one listing.
type RenderPlan struct {
	Rows       []Row
	Breadcrumb []Crumb
	Pager      Pager
}

// RenderOptions controls presentation details of a plan.
type RenderOptions struct {
	Paginated  bool
	TimeFormat string
	Location   *time.Location
}

// Plan turns a page and the navigation state into a render plan. The plan
// replaces whatever was displayed before; nothing accumulates.
func Plan(page Page, state ViewState, opts RenderOptions) RenderPlan {
	layout := opts.TimeFormat
	if layout == "" {
		layout = DefaultTimeFormat
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	rows := make([]Row, 0, len(page.Folders)+len(page.Files))
	for _, f := range page.Folders {
		rows = append(rows, Row{
			Kind: RowFolder,
			Key:  f.Key,
			Name: DisplayName(f.Key),
			Icon: FolderIcon,
		})
	}
	for _, f := range page.Files {
		rows = append(rows, Row{
			Kind:     RowFile,
			Key:      f.Key,
			Name:     DisplayName(f.Key),
			Icon:     FileIcon,
			Modified: f.LastModified.In(loc).Format(layout),
			Size:     FormatSize(f.Size),

			LastModified: f.LastModified,
		})
	}

	plan := RenderPlan{
		Rows:       rows,
		Breadcrumb: Breadcrumb(state.Path),
	}
	if opts.Paginated {
		plan.Pager = Pager{
			Visible:      true,
			Label:        fmt.Sprintf("Page %d of %d", state.Page, state.TotalPages),
			PrevDisabled: !state.HasPrev(),
			NextDisabled: !state.HasNext(),
		}
	}
	return plan
}

// DisplayName returns the last path segment of key, ignoring a trailing
// delimiter on folders.
func DisplayName(key string) string {
	key = strings.TrimSuffix(key, Delimiter)
	if i := strings.LastIndex(key, Delimiter); i >= 0 {
		return key[i+1:]
	}
	return key
}

// FormatSize scales size by 1024 up to TB and prints two decimals.
// A nil size prints as "Unknown".
func FormatSize(size *int64) string {
	if size == nil {
		return unknownSize
	}
	value := float64(*size)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", value, sizeUnits[unit])
}

// Breadcrumb builds the trail from Home to the last segment of path. Every
// crumb but the last is navigable; the last is the active one.
func Breadcrumb(path string) []Crumb {
	parts := pathSegments(path)
	crumbs := make([]Crumb, 0, len(parts)+1)
	crumbs = append(crumbs, Crumb{Label: HomeLabel, Path: "", Active: len(parts) == 0})

	prefix := ""
	for i, part := range parts {
		prefix += part + Delimiter
		crumbs = append(crumbs, Crumb{
			Label:  part,
			Path:   prefix,
			Active: i == len(parts)-1,
		})
	}
	return crumbs
}

// FilterRows hides rows whose name does not contain query, ignoring case.
// Rows are hidden, never removed; an empty query shows everything.
func FilterRows(rows []Row, query string) []Row {
	q := strings.ToLower(query)
	out := make([]Row, len(rows))
	for i, r := range rows {
		r.Hidden = !strings.Contains(strings.ToLower(r.Name), q)
		out[i] = r
	}
	return out
}

// VisibleRows returns the rows not hidden by a filter.
func VisibleRows(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !r.Hidden {
			out = append(out, r)
		}
	}
	return out
}
