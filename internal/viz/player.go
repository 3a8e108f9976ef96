package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/inertia/internal/dynamo"
	"github.com/san-kum/inertia/internal/sim"
)

const (
	trackWidth    = 60
	trackHeight   = 3
	chartWidth    = 60
	chartHeight   = 10
	frameInterval = time.Second / 60
	maxSpeed      = 8
	minSpeed      = 0.125
)

type TickMsg time.Time

type keyMap struct {
	Play, Restart, Back, Forward, Faster, Slower, Theme, Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Restart, k.Back, k.Forward, k.Faster, k.Slower, k.Theme, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Play:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play")),
	Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
	Back:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "back")),
	Forward: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "forward")),
	Faster:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
	Slower:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
	Theme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Player plays a pregenerated timeline back at wall-clock speed.
type Player struct {
	name    string
	tl      *sim.Timeline
	guides  []float64
	track   Track
	canvas  *Canvas
	bar     progress.Model
	help    help.Model
	theme   Theme
	head    int
	clock   float64
	speed   float64
	running bool
	lo, hi  float64
}

// NewPlayer builds a player for tl. Guides are drawn as ticks on the
// track, typically the bounds and the resting value.
func NewPlayer(name string, tl *sim.Timeline, guides []float64) Player {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range tl.Values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	bar := progress.New(
		progress.WithScaledGradient("#00ccff", "#00ff88"),
		progress.WithoutPercentage(),
		progress.WithWidth(trackWidth),
	)
	hlp := help.New()
	hlp.Styles.ShortDesc = KeyHint

	return Player{
		name:    name,
		bar:     bar,
		help:    hlp,
		tl:      tl,
		guides:  guides,
		track:   NewTrack(tl.Values, guides),
		canvas:  NewCanvas(trackWidth, trackHeight),
		theme:   Themes[0],
		speed:   1,
		running: tl.Len() > 1,
		lo:      lo,
		hi:      hi,
	}
}

func (p Player) Init() tea.Cmd {
	return tick()
}

func (p Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return p, tea.Quit
		case key.Matches(msg, keys.Play):
			if p.finished() {
				p.restart()
			} else {
				p.running = !p.running
			}
		case key.Matches(msg, keys.Restart):
			p.restart()
		case key.Matches(msg, keys.Back):
			p.scrub(-1)
		case key.Matches(msg, keys.Forward):
			p.scrub(1)
		case key.Matches(msg, keys.Faster):
			p.speed = math.Min(maxSpeed, p.speed*2)
		case key.Matches(msg, keys.Slower):
			p.speed = math.Max(minSpeed, p.speed/2)
		case key.Matches(msg, keys.Theme):
			p.theme = nextTheme(p.theme)
		}
	case TickMsg:
		if p.running {
			p.advance(float64(frameInterval.Milliseconds()) * p.speed)
		}
		return p, tick()
	}
	return p, nil
}

// advance moves the playback clock by ms and the head to the last
// sample at or before it.
func (p *Player) advance(ms float64) {
	p.clock += ms
	for p.head+1 < p.tl.Len() && p.tl.Times[p.head+1] <= p.clock {
		p.head++
	}
	if p.finished() {
		p.running = false
	}
}

func (p *Player) scrub(dir int) {
	p.running = false
	if p.tl.Len() == 0 {
		return
	}
	p.head = max(0, min(p.tl.Len()-1, p.head+dir))
	p.clock = p.tl.Times[p.head]
}

func (p *Player) restart() {
	p.head, p.clock = 0, 0
	p.running = p.tl.Len() > 1
}

func (p Player) finished() bool { return p.head >= p.tl.Len()-1 }

func (p Player) Head() int      { return p.head }
func (p Player) Running() bool  { return p.running }
func (p Player) Speed() float64 { return p.speed }
func (p Player) Theme() Theme   { return p.theme }

func (p Player) View() string {
	if p.tl.Len() == 0 {
		return Subtle.Render("empty timeline")
	}
	title := Title.Foreground(p.theme.Secondary)
	var s strings.Builder

	s.WriteString(title.Render(strings.ToUpper(p.name)) + "\n")
	switch {
	case p.running:
		s.WriteString(StatusRunning.Render(fmt.Sprintf("PLAYING x%g", p.speed)))
	case p.finished():
		s.WriteString(StatusRunning.Render("AT REST"))
	default:
		s.WriteString(StatusPaused.Render("PAUSED"))
	}
	s.WriteString("\n\n")

	values := p.tl.Values[:p.head+1]
	if len(values) > 1 {
		chart := asciigraph.Plot(values,
			asciigraph.Height(chartHeight),
			asciigraph.Width(chartWidth),
			asciigraph.LowerBound(p.lo),
			asciigraph.UpperBound(p.hi),
			asciigraph.Caption("value"))
		s.WriteString(lipgloss.NewStyle().Foreground(p.theme.Primary).Render(chart) + "\n\n")
	}

	p.canvas.Clear()
	p.canvas.DrawTrack(p.track, p.tl.Values[p.head], p.guides)
	s.WriteString(lipgloss.NewStyle().Foreground(p.theme.Accent).Render(p.canvas.String()) + "\n")

	t := p.tl.Times[p.head]
	s.WriteString(Row("time", fmt.Sprintf("%.2fs / %.2fs", dynamo.RoundSeconds(t), p.tl.Seconds())) + "\n")
	s.WriteString(Row("value", p.tl.Values[p.head]) + "\n")
	s.WriteString(Row("velocity", p.tl.Velocities[p.head]) + "\n")
	s.WriteString(p.bar.ViewAs(p.progress()) + "\n")
	s.WriteString(Sparkline(p.tl.Velocities[:p.head+1], trackWidth) + "\n")

	s.WriteString("\n" + p.help.View(keys))
	return GlassPanel.BorderForeground(p.theme.Muted).Render(s.String())
}

func (p Player) progress() float64 {
	if p.tl.Duration <= 0 {
		return 1
	}
	return p.tl.Times[p.head] / p.tl.Duration
}
