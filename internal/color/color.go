package color

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Palette colors adapt to the terminal background.
var (
	Accent  = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#C084FC"}
	Success = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
	Muted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	Surface = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#374151"}
	Text    = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F9FAFB"}
)

// Shared styles.
var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(Accent).PaddingLeft(1)
	SelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	ActiveStyle   = lipgloss.NewStyle().Foreground(Success)
	MutedStyle    = lipgloss.NewStyle().Foreground(Muted)
	BadgeStyle    = lipgloss.NewStyle().Background(Surface).Foreground(Text).Padding(0, 1)
)

// Initialize forces the dark or light variant of the palette.
func Initialize(isDarkMode bool) {
	lipgloss.SetHasDarkBackground(isDarkMode)
}

// InitializeFromEnv applies MULTIROOT_THEME ("dark" or "light") when set.
// Otherwise the terminal background is detected by lipgloss.
func InitializeFromEnv() {
	switch os.Getenv("MULTIROOT_THEME") {
	case "dark":
		Initialize(true)
	case "light":
		Initialize(false)
	}
}
