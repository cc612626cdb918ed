// Package tui hosts a room timeline in a terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tOgg1/roomview/internal/logging"
	"github.com/tOgg1/roomview/internal/room"
	"github.com/tOgg1/roomview/internal/textlayout"
	"github.com/tOgg1/roomview/internal/timeline"
	"github.com/tOgg1/roomview/internal/tui/styles"
)

const defaultPollInterval = time.Second

type Theme string

const (
	ThemeDefault      Theme = "default"
	ThemeHighContrast Theme = "high-contrast"
)

// Config configures the viewer.
type Config struct {
	Room         room.Room
	RoomName     string
	Theme        string
	PageSize     int
	Merge        timeline.MergePolicy
	BlockMargin  int
	BlockSpacing int
	SingleStep   int
	Location     *time.Location
	PollInterval time.Duration
}

// Model is the bubbletea model of the viewer. It owns the Timeline and is
// the only goroutine touching it; fetches and polls run as commands and
// report back through messages.
type Model struct {
	ctx          context.Context
	room         room.Room
	roomName     string
	tl           *timeline.Timeline
	live         *room.State
	since        string
	pageSize     int
	pollInterval time.Duration
	polling      bool
	theme        styles.Theme
	colors       *styles.AgentColorMapper
	logger       zerolog.Logger

	width    int
	height   int
	showHelp bool
	pollErr  error
	body     string
}

type backlogMsg struct {
	res timeline.FetchResult
}

type pollTickMsg struct{}

type pollMsg struct {
	page room.Page
	err  error
}

func pollTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return pollTickMsg{} })
}

func (m *Model) fetchCmd(f *timeline.Fetch) tea.Cmd {
	if f == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return backlogMsg{res: f.Do(ctx)}
	}
}

func (m *Model) pollCmd() tea.Cmd {
	ctx, src, since, limit := m.ctx, m.room, m.since, m.pageSize
	return func() tea.Msg {
		page, err := src.Messages(ctx, room.Forward, since, limit)
		return pollMsg{page: page, err: err}
	}
}

// NewModel loads the room's current state and live edge. The timeline
// starts empty at the live edge and grows backward as the view asks for it.
func NewModel(ctx context.Context, cfg Config) (*Model, error) {
	normalized, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	state, err := normalized.Room.State(ctx)
	if err != nil {
		return nil, fmt.Errorf("load room state: %w", err)
	}
	edge, err := normalized.Room.Messages(ctx, room.Backward, "", 1)
	if err != nil {
		return nil, fmt.Errorf("find live edge: %w", err)
	}

	theme, _ := styles.ByName(normalized.Theme)
	colors := styles.NewAgentColorMapper(theme.AgentPalette)
	avatars := timeline.NewAvatarCache(0, func(userID, name string) *timeline.Avatar {
		return &timeline.Avatar{
			UserID:   userID,
			Initials: timeline.Initials(name, userID),
			Color:    colors.ColorCode(userID),
		}
	})

	roomID := normalized.Room.ID()
	tl := timeline.New(timeline.Options{
		RoomID:       roomID,
		Source:       normalized.Room,
		History:      state,
		Font:         textlayout.CellFont{},
		PageSize:     normalized.PageSize,
		Merge:        normalized.Merge,
		BlockMargin:  normalized.BlockMargin,
		BlockSpacing: normalized.BlockSpacing,
		SingleStep:   normalized.SingleStep,
		Location:     normalized.Location,
		Avatars:      avatars,
	})
	tl.EndBatch(edge.Start)

	roomName := normalized.RoomName
	if roomName == "" {
		roomName = roomID
	}

	m := &Model{
		ctx:          ctx,
		room:         normalized.Room,
		roomName:     roomName,
		tl:           tl,
		live:         state.Clone(),
		since:        edge.Start,
		pageSize:     normalized.PageSize,
		pollInterval: normalized.PollInterval,
		theme:        theme,
		colors:       colors,
		logger:       logging.WithRoom("tui", roomID),
	}
	m.logger.Info().Str("live_edge", edge.Start).Int("members", state.Len()).Msg("viewer started")
	return m, nil
}

// Run opens the viewer full screen until the user quits or ctx ends.
func Run(ctx context.Context, cfg Config) error {
	model, err := NewModel(ctx, cfg)
	if err != nil {
		return err
	}

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd {
	return pollTickCmd(m.pollInterval)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.body = ""
		return m, m.fetchCmd(m.tl.Resize(m.bodySize()))
	case tea.KeyMsg:
		return m, m.handleKey(typed)
	case tea.MouseMsg:
		switch typed.Button {
		case tea.MouseButtonWheelUp:
			return m, m.fetchCmd(m.tl.StepUp(1))
		case tea.MouseButtonWheelDown:
			return m, m.fetchCmd(m.tl.StepDown(1))
		}
		return m, nil
	case backlogMsg:
		next, err := m.tl.ApplyBacklog(typed.res)
		if err != nil {
			// Logged and counted by the paginator. The footer shows it
			// until a fetch succeeds.
			return m, nil
		}
		return m, m.fetchCmd(next)
	case pollTickMsg:
		if m.polling {
			return m, nil
		}
		m.polling = true
		return m, m.pollCmd()
	case pollMsg:
		m.polling = false
		if typed.err != nil {
			m.pollErr = typed.err
			m.logger.Warn().Err(typed.err).Str("since", m.since).Msg("live poll failed")
			return m, pollTickCmd(m.pollInterval)
		}
		m.pollErr = nil
		m.applyLive(typed.page)
		if len(typed.page.Events) >= m.pageSize {
			m.polling = true
			return m, m.pollCmd()
		}
		return m, pollTickCmd(m.pollInterval)
	}
	return m, nil
}

// applyLive appends a forward page as one batch bounded below by the page's
// start. Each event is applied to the live state first so it resolves its own
// sender the way backlog events do.
func (m *Model) applyLive(page room.Page) {
	if len(page.Events) == 0 {
		return
	}
	for _, ev := range page.Events {
		m.live.Apply(ev)
		m.tl.PushBack(m.live, ev)
	}
	m.tl.EndBatch(page.Start)
	m.since = page.End
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "?":
		m.showHelp = !m.showHelp
		return nil
	case "up", "k":
		return m.fetchCmd(m.tl.StepUp(1))
	case "down", "j":
		return m.fetchCmd(m.tl.StepDown(1))
	case "pgup", "b", "ctrl+u":
		return m.fetchCmd(m.tl.PageUp())
	case "pgdown", "f", " ", "ctrl+d":
		return m.fetchCmd(m.tl.PageDown())
	case "home", "g":
		return m.fetchCmd(m.tl.ScrollTo(0))
	case "end", "G":
		return m.fetchCmd(m.tl.ToBottom())
	case "r":
		return m.fetchCmd(m.tl.GrowBacklog())
	}
	return nil
}

// bodySize is the timeline area: everything but the header, the footer and
// the scrollbar column.
func (m *Model) bodySize() (int, int) {
	w := m.width - 1
	h := m.height - 2
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	return lipgloss.JoinVertical(lipgloss.Left, header, m.renderBody(), footer)
}

// renderBody repaints only after the timeline signalled a change.
func (m *Model) renderBody() string {
	select {
	case <-m.tl.Repaint():
		m.body = ""
	default:
	}
	if m.body == "" {
		m.body = m.paint()
	}
	return m.body
}

func (m *Model) paint() string {
	w, h := m.bodySize()
	if h == 0 {
		return ""
	}
	canvas := newCellCanvas(w, h, m.theme, m.colors)
	stats := m.tl.Paint(canvas, textlayout.Rect{Width: w, Height: h})
	m.logger.Trace().Int("visited", stats.Visited).Int("painted", stats.Painted).Msg("painted")

	rows := canvas.Render()
	bar := scrollbarColumn(m.tl.Scrollbar(), h, m.theme)
	for i := range rows {
		rows[i] += bar[i]
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderHeader() string {
	title := fmt.Sprintf("%s  %d members", m.roomName, m.live.Len())
	return m.theme.HeaderStyle().MaxWidth(m.width).Render(title)
}

func (m *Model) renderFooter() string {
	if m.showHelp {
		return m.theme.FooterStyle().MaxWidth(m.width).Render(helpLine)
	}

	parts := []string{
		"backlog " + m.tl.State().String(),
		fmt.Sprintf("%d blocks", m.tl.Blocks()),
	}
	if !m.tl.AtBottom() {
		parts = append(parts, "scrolled")
	}
	line := m.theme.FooterStyle().Render(strings.Join(parts, " · "))

	switch {
	case m.tl.LastError() != nil:
		line += "  " + m.theme.ErrorStyle().Render("backlog: "+m.tl.LastError().Error()+" (r to retry)")
	case m.pollErr != nil:
		line += "  " + m.theme.ErrorStyle().Render("live: "+m.pollErr.Error())
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

const helpLine = "↑↓ scroll · pgup/pgdn page · g top · G live · r retry · q quit · ? help"

func (c Config) normalize() (Config, error) {
	if c.Room == nil {
		return Config{}, fmt.Errorf("no room to view")
	}
	c.RoomName = strings.TrimSpace(c.RoomName)
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.PageSize <= 0 {
		c.PageSize = room.DefaultPageSize
	}
	if strings.TrimSpace(c.Theme) == "" {
		c.Theme = string(ThemeDefault)
	}
	switch Theme(c.Theme) {
	case ThemeDefault, ThemeHighContrast:
	default:
		return Config{}, fmt.Errorf("invalid theme %q", c.Theme)
	}
	return c, nil
}
