package main

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

const (
	nameColumnWidth     = 40
	modifiedColumnWidth = 20
	sizeColumnWidth     = 12
)

// downloader retrieves an object into the local filesystem.
type downloader interface {
	Download(ctx context.Context, key string) (string, error)
}

// ModelOptions wires a Model to its collaborators.
type ModelOptions struct {
	Fetcher    Fetcher
	Config     *Config
	Prefs      *PrefStore
	DarkMode   bool
	Open       OpenFunc
	Downloader downloader
	Logger     zerolog.Logger
}

// Model represents the application state
type Model struct {
	fetcher    Fetcher
	config     *Config
	prefs      *PrefStore
	open       OpenFunc
	downloader downloader
	log        zerolog.Logger

	nav        Navigator
	state      ViewState
	pageOpts   PageOptions
	renderOpts RenderOptions

	listing *Listing
	plan    RenderPlan
	cursor  int
	seq     int
	loading bool

	err           error
	statusMessage string
	statusIsError bool

	search    textinput.Model
	searching bool
	spinner   spinner.Model
	keys      keyMap
	help      help.Model

	dark   bool
	styles styles

	width  int
	height int
}

// Messages for async operations
type listingLoadedMsg struct {
	seq     int
	state   ViewState
	listing *Listing
	err     error
	elapsed time.Duration
}

type fileDownloadedMsg struct {
	filename string
	err      error
}

type fileOpenedMsg struct {
	url string
	err error
}

type statusMsg struct {
	message string
	isError bool
}

// styles holds one theme's lipgloss styles.
type styles struct {
	title     lipgloss.Style
	crumb     lipgloss.Style
	crumbLive lipgloss.Style
	header    lipgloss.Style
	selected  lipgloss.Style
	directory lipgloss.Style
	file      lipgloss.Style
	muted     lipgloss.Style
	alert     lipgloss.Style
	success   lipgloss.Style
	disabled  lipgloss.Style
	browser   lipgloss.Style
}

func newStyles(dark bool) styles {
	fg, bg, accent, muted, dir := "#222222", "#dddddd", "#0066cc", "#666666", "#0066cc"
	if dark {
		fg, bg, accent, muted, dir = "#eeeeee", "#333333", "#66aaff", "#999999", "#66aaff"
	}
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fg)).
			Background(lipgloss.Color(bg)).
			Padding(0, 1),
		crumb:     lipgloss.NewStyle().Foreground(lipgloss.Color(accent)).Underline(true),
		crumbLive: lipgloss.NewStyle().Foreground(lipgloss.Color(fg)).Bold(true),
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fg)).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color(muted)),
		selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fg)).
			Background(lipgloss.Color(bg)),
		directory: lipgloss.NewStyle().Foreground(lipgloss.Color(dir)).Bold(true),
		file:      lipgloss.NewStyle().Foreground(lipgloss.Color(fg)),
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color(muted)),
		alert: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cc0000")).
			Bold(true).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#cc0000")).
			Padding(0, 1),
		success:  lipgloss.NewStyle().Foreground(lipgloss.Color("#006600")).Bold(true),
		disabled: lipgloss.NewStyle().Foreground(lipgloss.Color(muted)).Faint(true),
		browser:  lipgloss.NewStyle().Padding(1, 2),
	}
}

// NewModel creates a new TUI model
func NewModel(opts ModelOptions) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	open := opts.Open
	if open == nil {
		open = OpenInBrowser
	}

	search := textinput.New()
	search.Placeholder = "Search"
	search.Prompt = "🔍 "

	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		fetcher:    opts.Fetcher,
		config:     cfg,
		prefs:      opts.Prefs,
		open:       open,
		downloader: opts.Downloader,
		log:        opts.Logger,
		nav:        Navigator{ResetPageOnEnter: cfg.ResetPageOnEnter},
		state:      InitialState(),
		pageOpts:   PageOptions{PageSize: cfg.PageSize, Exclude: cfg.Exclude},
		renderOpts: RenderOptions{Paginated: cfg.PageSize != Unbounded, TimeFormat: cfg.TimeFormat},
		plan:       RenderPlan{Breadcrumb: Breadcrumb("")},
		loading:    true,
		search:     search,
		spinner:    s,
		keys:       defaultKeyMap(),
		help:       help.New(),
		dark:       opts.DarkMode,
		styles:     newStyles(opts.DarkMode),
	}
}

// Init fetches the bucket root. NewModel already counts it as issued.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(m.seq, m.state), m.spinner.Tick)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateBrowser(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listingLoadedMsg:
		return m.applyListing(msg), nil

	case fileDownloadedMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("download failed")
			m.statusMessage, m.statusIsError = msg.err.Error(), true
		} else {
			m.log.Info().Str("file", msg.filename).Msg("downloaded")
			m.statusMessage, m.statusIsError = fmt.Sprintf("✓ Downloaded '%s' successfully", msg.filename), false
		}
		return m, nil

	case fileOpenedMsg:
		if msg.err != nil {
			m.statusMessage, m.statusIsError = msg.err.Error(), true
		} else {
			m.statusMessage, m.statusIsError = "Opened "+msg.url, false
		}
		return m, nil

	case statusMsg:
		m.statusMessage, m.statusIsError = msg.message, msg.isError
		return m, nil
	}

	return m, nil
}

// applyListing installs a finished fetch. Only the most recently issued
// fetch may update the display; on failure the previous table stays.
func (m Model) applyListing(msg listingLoadedMsg) Model {
	if msg.seq != m.seq {
		m.log.Debug().Int("seq", msg.seq).Int("latest", m.seq).Str("prefix", msg.state.Path).Msg("dropping stale listing")
		return m
	}
	m.loading = false

	if msg.err != nil {
		m.log.Error().Err(msg.err).Str("prefix", msg.state.Path).Msg("fetch failed")
		m.err = msg.err
		return m
	}

	m.log.Info().
		Str("prefix", msg.state.Path).
		Int("folders", len(msg.listing.Folders)).
		Int("files", len(msg.listing.Files)).
		Bool("truncated", msg.listing.Truncated).
		Dur("elapsed", msg.elapsed).
		Msg("listing loaded")

	m.err = nil
	m.listing = msg.listing
	m.render()
	return m
}

// render rebuilds the plan from the current listing and state.
func (m *Model) render() {
	page := BuildPage(m.listing, m.state.Page, m.pageOpts)
	m.state = m.state.WithTotalPages(page.TotalPages)
	plan := Plan(page, m.state, m.renderOpts)
	plan.Rows = FilterRows(plan.Rows, m.search.Value())
	m.plan = plan
	m.cursor = 0
}

// updateBrowser handles browser view updates
func (m Model) updateBrowser(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := VisibleRows(m.plan.Rows)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Open):
		if m.cursor < len(visible) {
			selected := visible[m.cursor]
			if selected.Kind == RowFolder {
				m.state = m.nav.EnterFolder(m.state, selected.Key)
				return m.startFetch()
			}
			return m, m.openFile(selected.Key)
		}

	case key.Matches(msg, m.keys.Parent):
		if m.state.Path != "" {
			m.state = m.nav.Parent(m.state)
			return m.startFetch()
		}

	case key.Matches(msg, m.keys.Home):
		m.state = m.nav.Home(m.state)
		return m.startFetch()

	case key.Matches(msg, m.keys.Crumb):
		idx := int(msg.String()[0] - '0')
		if idx < len(m.plan.Breadcrumb) && !m.plan.Breadcrumb[idx].Active {
			m.state = m.nav.JumpTo(m.state, m.plan.Breadcrumb[idx].Path)
			return m.startFetch()
		}

	case key.Matches(msg, m.keys.PrevPage):
		if m.plan.Pager.Visible && !m.plan.Pager.PrevDisabled {
			m.state = m.nav.PrevPage(m.state)
			return m.startFetch()
		}

	case key.Matches(msg, m.keys.NextPage):
		if m.plan.Pager.Visible && !m.plan.Pager.NextDisabled {
			m.state = m.nav.NextPage(m.state)
			return m.startFetch()
		}

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Dismiss):
		m.err = nil
		m.statusMessage = ""

	case key.Matches(msg, m.keys.Theme):
		m.dark = !m.dark
		m.styles = newStyles(m.dark)
		return m, m.saveDarkMode(m.dark)

	case key.Matches(msg, m.keys.Download):
		if m.cursor < len(visible) && visible[m.cursor].Kind == RowFile {
			return m, m.downloadFile(visible[m.cursor].Key)
		}

	case key.Matches(msg, m.keys.Refresh):
		return m.startFetch()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// updateSearch routes keys to the search box while it has focus. Enter keeps
// the filter, esc clears it.
func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.applyFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *Model) applyFilter() {
	m.plan.Rows = FilterRows(m.plan.Rows, m.search.Value())
	m.cursor = 0
}

// startFetch issues a listing request for the current state. Responses to
// earlier requests are ignored once this one is issued.
func (m Model) startFetch() (Model, tea.Cmd) {
	m.seq++
	m.loading = true
	m.err = nil
	return m, m.fetchCmd(m.seq, m.state)
}

func (m Model) fetchCmd(seq int, state ViewState) tea.Cmd {
	fetcher, log := m.fetcher, m.log
	log.Debug().Int("seq", seq).Str("prefix", state.Path).Int("page", state.Page).Msg("fetching listing")

	return func() tea.Msg {
		start := time.Now()
		listing, err := fetcher.FetchListing(context.Background(), state.Path)
		return listingLoadedMsg{
			seq:     seq,
			state:   state,
			listing: listing,
			err:     err,
			elapsed: time.Since(start),
		}
	}
}

// openFile hands the object's public URL to the opener
func (m Model) openFile(key string) tea.Cmd {
	objURL := ObjectURL(m.config.BucketURL(), key)
	open := m.open
	return func() tea.Msg {
		return fileOpenedMsg{url: objURL, err: open(objURL)}
	}
}

// downloadFile downloads a file to the local directory
func (m Model) downloadFile(key string) tea.Cmd {
	if m.downloader == nil {
		return nil
	}
	d := m.downloader
	return func() tea.Msg {
		filename, err := d.Download(context.Background(), key)
		return fileDownloadedMsg{filename: filename, err: err}
	}
}

// saveDarkMode persists the display preference
func (m Model) saveDarkMode(on bool) tea.Cmd {
	if m.prefs == nil {
		return nil
	}
	prefs, log := m.prefs, m.log
	return func() tea.Msg {
		if err := prefs.SetDarkMode(on); err != nil {
			log.Error().Err(err).Msg("failed to save preference")
			return statusMsg{message: err.Error(), isError: true}
		}
		log.Debug().Bool("dark_mode", on).Msg("preference saved")
		return nil
	}
}

// View renders the file browser
func (m Model) View() string {
	st := m.styles
	var s strings.Builder

	title := fmt.Sprintf("Bucket: %s", m.config.Bucket)
	if m.state.Path != "" {
		title += fmt.Sprintf(" | Path: /%s", m.state.Path)
	}
	s.WriteString(st.title.Render(title))
	s.WriteString("\n\n")

	s.WriteString(m.viewBreadcrumb())
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(st.alert.Render(m.err.Error() + "  " + st.muted.Render("(esc to dismiss)")))
		s.WriteString("\n\n")
	}

	if m.loading {
		s.WriteString(m.spinner.View() + " Loading...\n\n")
	}

	if m.searching || m.search.Value() != "" {
		s.WriteString(m.search.View())
		s.WriteString("\n\n")
	}

	s.WriteString(m.viewTable())

	if m.plan.Pager.Visible {
		s.WriteString("\n")
		s.WriteString(m.viewPager())
		s.WriteString("\n")
	}

	if line := m.viewSelection(); line != "" {
		s.WriteString("\n")
		s.WriteString(st.muted.Render(line))
		s.WriteString("\n")
	}

	if m.statusMessage != "" {
		s.WriteString("\n")
		if m.statusIsError {
			s.WriteString(st.alert.Render(m.statusMessage))
		} else {
			s.WriteString(st.success.Render(m.statusMessage))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.help.View(m.keys))

	bordered := st.browser.Render(s.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, bordered)
	}
	return bordered
}

func (m Model) viewBreadcrumb() string {
	parts := make([]string, 0, len(m.plan.Breadcrumb))
	for i, c := range m.plan.Breadcrumb {
		if c.Active {
			parts = append(parts, m.styles.crumbLive.Render(c.Label))
			continue
		}
		part := m.styles.crumb.Render(c.Label)
		if i < 10 {
			part += m.styles.muted.Render(fmt.Sprintf("[%d]", i))
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, m.styles.muted.Render(" / "))
}

func (m Model) viewTable() string {
	st := m.styles
	var s strings.Builder

	header := cell("Name", nameColumnWidth+3) + cell("Last Modified", modifiedColumnWidth) + rightCell("Size", sizeColumnWidth)
	s.WriteString(st.header.Render(header))
	s.WriteString("\n")

	visible := VisibleRows(m.plan.Rows)
	if len(visible) == 0 {
		s.WriteString("No objects found in this location.\n")
		return s.String()
	}

	for i, row := range visible {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}

		name := row.Icon + " " + truncate(row.Name, nameColumnWidth)
		if row.Kind == RowFolder {
			name = st.directory.Render(name)
		} else {
			name = st.file.Render(name)
		}

		line := cursor + " " + lipgloss.NewStyle().Width(nameColumnWidth+3).Render(name) +
			cell(row.Modified, modifiedColumnWidth) +
			rightCell(row.Size, sizeColumnWidth)

		if i == m.cursor {
			line = st.selected.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}
	return s.String()
}

func (m Model) viewPager() string {
	st := m.styles
	prev, next := "‹ prev [", "] next ›"
	if m.plan.Pager.PrevDisabled {
		prev = st.disabled.Render(prev)
	}
	if m.plan.Pager.NextDisabled {
		next = st.disabled.Render(next)
	}
	return prev + "  " + m.plan.Pager.Label + "  " + next
}

// viewSelection describes the selected file with a relative timestamp.
func (m Model) viewSelection() string {
	visible := VisibleRows(m.plan.Rows)
	if m.cursor >= len(visible) || visible[m.cursor].Kind != RowFile {
		return ""
	}
	row := visible[m.cursor]
	return fmt.Sprintf("%s · %s · modified %s", row.Key, row.Size, humanize.Time(row.LastModified))
}

func cell(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(truncate(s, width-1))
}

func rightCell(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Right).Render(truncate(s, width))
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}
