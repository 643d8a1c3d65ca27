package main

import "strings"

// ViewState is the navigation position. Transitions return a new value.
type ViewState struct {
	Path       string
	Page       int
	TotalPages int
}

// InitialState is the state at startup: the bucket root, first page.
func InitialState() ViewState {
	return ViewState{Path: "", Page: 1}
}

// Navigator applies navigation transitions to a ViewState.
type Navigator struct {
	// ResetPageOnEnter returns to page 1 whenever the path changes. When
	// false the page number carries over into the new folder, which can land
	// past the folder's last page.
	ResetPageOnEnter bool
}

// EnterFolder moves into the folder with the given key.
func (n Navigator) EnterFolder(s ViewState, key string) ViewState {
	return n.moveTo(s, key)
}

// JumpTo moves to an ancestor path selected from the breadcrumb.
func (n Navigator) JumpTo(s ViewState, path string) ViewState {
	if path != "" && !strings.HasSuffix(path, Delimiter) {
		path += Delimiter
	}
	return n.moveTo(s, path)
}

// Home moves to the bucket root.
func (n Navigator) Home(s ViewState) ViewState {
	return n.moveTo(s, "")
}

// Parent moves one level up from the current path.
func (n Navigator) Parent(s ViewState) ViewState {
	return n.moveTo(s, ParentPath(s.Path))
}

func (n Navigator) moveTo(s ViewState, path string) ViewState {
	next := s
	next.Path = path
	if n.ResetPageOnEnter {
		next.Page = 1
	}
	return next
}

// PrevPage steps back one page, never below 1.
func (n Navigator) PrevPage(s ViewState) ViewState {
	next := s
	next.Page = max(s.Page-1, 1)
	return next
}

// NextPage steps forward one page, never past the last page. With no pages
// the state stays on page 1.
func (n Navigator) NextPage(s ViewState) ViewState {
	next := s
	next.Page = max(min(s.Page+1, s.TotalPages), 1)
	return next
}

// WithTotalPages records the page count of the latest render.
func (s ViewState) WithTotalPages(total int) ViewState {
	s.TotalPages = total
	return s
}

// HasPrev reports whether a previous page exists.
func (s ViewState) HasPrev() bool {
	return s.Page > 1
}

// HasNext reports whether a next page exists.
func (s ViewState) HasNext() bool {
	return s.TotalPages > 0 && s.Page < s.TotalPages
}

// ParentPath returns the prefix one level above path, with trailing delimiter.
func ParentPath(path string) string {
	parts := pathSegments(path)
	if len(parts) <= 1 {
		return ""
	}
	return strings.Join(parts[:len(parts)-1], Delimiter) + Delimiter
}

func pathSegments(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, Delimiter) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
