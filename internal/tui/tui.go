package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Zuo-Peng/drive-summarizer/internal/apperr"
	"github.com/Zuo-Peng/drive-summarizer/internal/backend"
	"github.com/Zuo-Peng/drive-summarizer/internal/browser"
	"github.com/Zuo-Peng/drive-summarizer/internal/drive"
	"github.com/Zuo-Peng/drive-summarizer/internal/logging"
	"github.com/Zuo-Peng/drive-summarizer/internal/open"
	"github.com/Zuo-Peng/drive-summarizer/internal/render"
	"github.com/Zuo-Peng/drive-summarizer/internal/session"
	"github.com/Zuo-Peng/drive-summarizer/internal/summary"
)

// ErrNotLoggedIn is returned by Run when the store has no session.
var ErrNotLoggedIn = errors.New("not logged in, run `dsum login` first")

const (
	noticeExpired   = "Session expired. Run `dsum login` to sign in again."
	noticeLoggedOut = "Logged out."
)

// ProfileFetcher resolves the signed-in user.
type ProfileFetcher interface {
	Profile(ctx context.Context, sessionID string) (*backend.Profile, error)
}

// Deps are the services the browser talks to.
type Deps struct {
	Sessions  *session.Store
	Files     drive.Lister
	Profiles  ProfileFetcher
	Summaries *summary.Coordinator
	Timeout   time.Duration
}

// message types

type filesLoadedMsg struct {
	refresh browser.Refresh
	files   []drive.FileEntry
	err     error
}

type summaryMsg struct {
	res summary.Result
	err error
}

type profileMsg struct {
	profile *backend.Profile
	err     error
}

// model

type model struct {
	deps        Deps
	sessionID   string
	state       *browser.State
	initial     browser.Refresh
	profile     *backend.Profile
	listOffset  int
	filterInput textinput.Model
	preview     viewport.Model
	previewKey  string // identity of the preview content, avoids re-rendering markdown
	flash       string
	exitNotice  string
	width       int
	height      int
	ready       bool
	quitting    bool
}

func newModel(deps Deps, sessionID string) model {
	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.Focus()
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256

	st := browser.New()
	return model{
		deps:        deps,
		sessionID:   sessionID,
		state:       st,
		initial:     st.Refresh(),
		filterInput: ti,
		preview:     viewport.New(0, 0),
	}
}

// Run starts the browser and blocks until it exits. A logout or an expired
// session prints a notice once the screen is restored.
func Run(deps Deps) error {
	sess, ok := deps.Sessions.Current()
	if !ok {
		return ErrNotLoggedIn
	}

	m := newModel(deps, sess.ID)
	deps.Sessions.OnLogout(func() {
		deps.Summaries.Cache().Purge()
		m.state.Reset()
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	if fm := finalModel.(model); fm.exitNotice != "" {
		fmt.Println(fm.exitNotice)
	}
	return nil
}

// Init loads the root folder and the profile.
func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadFilesCmd(m.initial), m.loadProfileCmd())
}

// Update handles messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.preview = newViewport(m.previewWidth(), m.panelHeight())
		m.previewKey = ""
		m.syncPreview()
		return m, nil

	case tea.KeyMsg:
		m.flash = ""
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Logout):
			return m.logout(noticeLoggedOut)

		case key.Matches(msg, keys.Enter):
			a := m.state.Open()
			switch a.Kind {
			case browser.ActionRefresh:
				m.folderChanged()
				return m, m.loadFilesCmd(a.Refresh)
			case browser.ActionSummarize:
				m.syncPreview()
				return m, m.summarizeCmd(a.File)
			}
			return m, nil

		case key.Matches(msg, keys.Summarize):
			if f, ok := m.state.BeginSummarize(); ok {
				m.syncPreview()
				return m, m.summarizeCmd(f)
			}
			return m, nil

		case key.Matches(msg, keys.Back):
			return m.goBack()

		case msg.Type == tea.KeyBackspace && m.filterInput.Value() == "":
			return m.goBack()

		case key.Matches(msg, keys.Reload):
			m.state.DismissNotice()
			return m, m.loadFilesCmd(m.state.Refresh())

		case key.Matches(msg, keys.Copy):
			m.copySummary()
			return m, nil

		case key.Matches(msg, keys.OpenWeb):
			if f, ok := m.state.Selected(); ok {
				if err := open.URL(f.WebURL()); err != nil {
					m.flash = "open failed: " + err.Error()
				}
			}
			return m, nil

		case key.Matches(msg, keys.Up):
			m.state.SelectPrevious()
			m.adjustListScroll(m.panelHeight())
			m.syncPreview()
			return m, nil

		case key.Matches(msg, keys.Down):
			m.state.SelectNext()
			m.adjustListScroll(m.panelHeight())
			m.syncPreview()
			return m, nil

		case key.Matches(msg, keys.PreviewUp):
			m.preview.LineUp(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PreviewDn):
			m.preview.LineDown(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PageUp):
			m.preview.LineUp(m.panelHeight())
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.preview.LineDown(m.panelHeight())
			return m, nil
		}

		// Pass remaining keys to text input
		var tiCmd tea.Cmd
		m.filterInput, tiCmd = m.filterInput.Update(msg)
		cmds = append(cmds, tiCmd)

		if q := m.filterInput.Value(); q != m.state.Filter() {
			m.state.SetFilter(q)
			m.listOffset = 0
			m.syncPreview()
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		if !m.ready {
			return m, nil
		}

		region, itemIdx := m.hitTest(msg.X, msg.Y)
		visible := len(m.state.Visible())

		switch {
		case region == regionList && msg.Button == tea.MouseButtonWheelUp:
			if m.listOffset > 0 {
				m.listOffset--
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonWheelDown:
			maxOffset := visible - m.panelHeight()/linesPerItem
			if maxOffset < 0 {
				maxOffset = 0
			}
			if m.listOffset < maxOffset {
				m.listOffset++
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			if itemIdx >= 0 && itemIdx < visible && itemIdx != m.state.SelectedIndex() {
				m.state.SelectIndex(itemIdx)
				m.adjustListScroll(m.panelHeight())
				m.syncPreview()
			}
			return m, nil

		case region == regionPreview && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown):
			var vpCmd tea.Cmd
			m.preview, vpCmd = m.preview.Update(msg)
			return m, vpCmd
		}
		return m, nil

	case filesLoadedMsg:
		if !m.state.ApplyListing(msg.refresh, msg.files, msg.err) {
			logging.Debug("dropped stale listing",
				zap.String("folder_id", msg.refresh.FolderID),
				zap.Uint64("generation", msg.refresh.Generation))
			return m, nil
		}
		if apperr.IsSessionExpired(msg.err) {
			return m.logout(noticeExpired)
		}
		m.adjustListScroll(m.panelHeight())
		m.syncPreview()
		return m, nil

	case summaryMsg:
		m.state.ApplySummary(msg.res, msg.err)
		if apperr.IsSessionExpired(msg.err) {
			return m.logout(noticeExpired)
		}
		m.syncPreview()
		return m, nil

	case profileMsg:
		if msg.err != nil {
			if apperr.IsSessionExpired(msg.err) {
				return m.logout(noticeExpired)
			}
			logging.Warn("profile fetch failed", zap.Error(msg.err))
			m.flash = "profile unavailable"
			return m, nil
		}
		m.profile = msg.profile
		return m, nil
	}

	return m, tea.Batch(cmds...)
}

// View renders the full TUI.
func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	previewW := m.previewWidth()
	panelH := m.panelHeight()

	inputRow := m.filterInput.View()
	titleRow := m.titleRow()

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	m.preview.Width = previewW
	m.preview.Height = panelH
	previewPanel := styleActiveBorder.
		Width(previewW).
		Height(panelH).
		Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)

	return lipgloss.JoinVertical(lipgloss.Left, inputRow, titleRow, panels, m.statusBar())
}

func (m model) goBack() (tea.Model, tea.Cmd) {
	r, ok := m.state.GoBack()
	if !ok {
		return m, nil
	}
	m.folderChanged()
	return m, m.loadFilesCmd(r)
}

// folderChanged syncs the widgets after the state moved to another folder.
func (m *model) folderChanged() {
	m.filterInput.SetValue("")
	m.listOffset = 0
	m.syncPreview()
}

func (m model) logout(notice string) (tea.Model, tea.Cmd) {
	if err := m.deps.Sessions.Logout(); err != nil {
		logging.Warn("logout failed", zap.Error(err))
	}
	m.exitNotice = notice
	m.quitting = true
	return m, tea.Quit
}

func (m *model) copySummary() {
	s := m.state.Summary()
	if s.Text == "" {
		m.flash = "no summary to copy"
		return
	}
	if err := clipboard.WriteAll(s.Text); err != nil {
		m.flash = "copy failed: " + err.Error()
		return
	}
	m.flash = "summary copied"
}

// helper methods

func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	// 40% for list, minus border padding
	w := m.width*40/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	// 60% for preview, minus border padding
	w := m.width*60/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// Subtract input row (1) + title row (1) + status bar (1) + borders (4)
	h := m.height - 7
	if h < 5 {
		h = 5
	}
	return h
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// hitTest maps terminal coordinates to a panel region and list item index.
func (m model) hitTest(x, y int) (mouseRegion, int) {
	pH := m.panelHeight()
	contentYStart := 3 // input row (1) + title row (1) + top border (1)
	contentYEnd := contentYStart + pH - 1

	if y < contentYStart || y > contentYEnd {
		return regionNone, -1
	}
	relY := y - contentYStart

	lw := m.listWidth()
	listBoxRight := lw + 1 // col 0=border, 1..lw=content, lw+1=border

	if x >= 1 && x <= lw {
		return regionList, m.listOffset + relY/linesPerItem
	}

	if x > listBoxRight+1 {
		return regionPreview, -1
	}

	return regionNone, -1
}

func (m model) titleRow() string {
	title := m.state.Path()
	if m.state.Loading() {
		title += "  loading…"
	}
	return styleTitle.Render(render.Truncate(title, m.width-1))
}

func (m model) statusBar() string {
	var parts []string
	if m.profile != nil {
		parts = append(parts, m.profile.Name)
	} else {
		parts = append(parts, m.deps.Sessions.Scope())
	}
	parts = append(parts, fmt.Sprintf("%d/%d files", len(m.state.Visible()), len(m.state.Files())))
	if err := m.state.Notice(); err != nil {
		parts = append(parts, styleNotice.Render(err.Error()))
	}
	if m.flash != "" {
		parts = append(parts, m.flash)
	}
	parts = append(parts, "enter open", "C-s summarize", "C-b back", "C-y copy", "C-x logout", "Esc quit")
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

func (m model) requestContext() (context.Context, context.CancelFunc) {
	if m.deps.Timeout > 0 {
		return context.WithTimeout(context.Background(), m.deps.Timeout)
	}
	return context.WithCancel(context.Background())
}

func (m model) loadFilesCmd(r browser.Refresh) tea.Cmd {
	lister := m.deps.Files
	sessionID := m.sessionID
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		files, err := lister.ListFiles(ctx, sessionID, r.FolderID)
		return filesLoadedMsg{refresh: r, files: files, err: err}
	}
}

func (m model) summarizeCmd(f drive.FileEntry) tea.Cmd {
	coord := m.deps.Summaries
	sessionID := m.sessionID
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		res, err := coord.Summarize(ctx, sessionID, &f)
		return summaryMsg{res: res, err: err}
	}
}

func (m model) loadProfileCmd() tea.Cmd {
	profiles := m.deps.Profiles
	sessionID := m.sessionID
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		p, err := profiles.Profile(ctx, sessionID)
		return profileMsg{profile: p, err: err}
	}
}
