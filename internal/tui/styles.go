package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme is the board's color scheme.
type Theme struct {
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color
	Primary       lipgloss.Color
	Accent        lipgloss.Color
	Success       lipgloss.Color
	Warning       lipgloss.Color
	Error         lipgloss.Color
	Border        lipgloss.Color
	BorderFocus   lipgloss.Color
	Selection     lipgloss.Color
}

// DefaultTheme is the only theme.
var DefaultTheme = Theme{
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),
	Primary:       lipgloss.Color("#7aa2f7"),
	Accent:        lipgloss.Color("#7dcfff"),
	Success:       lipgloss.Color("#9ece6a"),
	Warning:       lipgloss.Color("#e0af68"),
	Error:         lipgloss.Color("#f7768e"),
	Border:        lipgloss.Color("#3b4261"),
	BorderFocus:   lipgloss.Color("#7aa2f7"),
	Selection:     lipgloss.Color("#33467c"),
}

// MaxWidth caps the content width.
const MaxWidth = 80

// Styles holds the pre-computed styles for the UI.
type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	ListHeader   lipgloss.Style
	Task         lipgloss.Style
	TaskDone     lipgloss.Style
	Selected     lipgloss.Style
	Pending      lipgloss.Style
	EmptyMessage lipgloss.Style

	Label        lipgloss.Style
	Input        lipgloss.Style
	InputFocused lipgloss.Style

	Confirm       lipgloss.Style
	NoticeSuccess lipgloss.Style
	NoticeError   lipgloss.Style

	Help lipgloss.Style
}

// NewStyles creates styles for t.
func NewStyles(t Theme) *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),

		TitleMuted: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		ListHeader: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true),

		Task: lipgloss.NewStyle().
			Foreground(t.Foreground),

		TaskDone: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Strikethrough(true),

		Selected: lipgloss.NewStyle().
			Background(t.Selection).
			Bold(true),

		Pending: lipgloss.NewStyle().
			Foreground(t.Warning).
			Italic(true),

		EmptyMessage: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(1, 2),

		Label: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Width(18),

		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		InputFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		Confirm: lipgloss.NewStyle().
			Foreground(t.Warning).
			Bold(true),

		NoticeSuccess: lipgloss.NewStyle().
			Foreground(t.Success),

		NoticeError: lipgloss.NewStyle().
			Foreground(t.Error),

		Help: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(1, 0, 0, 0),
	}
}

// applyColorProfile sets Lip Gloss's color profile. NO_COLOR disables
// color; otherwise the terminal's capabilities decide, upgraded when
// COLORTERM or TERM advertise more than the detector reports.
func applyColorProfile() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	term := strings.ToLower(os.Getenv("TERM"))
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	switch {
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	case strings.Contains(term, "256color"):
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}

	lipgloss.SetColorProfile(profile)
}
