package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary   = lipgloss.Color("#4ECDC4")
	Accent    = lipgloss.Color("#FFB347")
	Surface   = lipgloss.Color("#16213e")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	ErrorText = lipgloss.Color("#FF6B6B")
	LoggedIn  = lipgloss.Color("#95E1A3")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	SearchStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	SearchFocusedStyle = SearchStyle.
				BorderForeground(Primary)

	SuggestionStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 2)

	SuggestionSelectedStyle = lipgloss.NewStyle().
				Foreground(Text).
				Background(Surface).
				Bold(true).
				Padding(0, 2)

	ShelfTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Text)

	ShelfTitleFocusedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Primary)

	// Card width excludes the border, which adds two cells
	CardStyle = lipgloss.NewStyle().
			Width(cardWidth-2).
			Height(cardHeight-2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	CardSelectedStyle = CardStyle.
				BorderForeground(Accent)

	ArrowStyle         = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	ArrowDisabledStyle = lipgloss.NewStyle().Foreground(Border)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	HelpStyle  = lipgloss.NewStyle().Foreground(TextMuted)
	ErrorStyle = lipgloss.NewStyle().Foreground(ErrorText)
	BadgeStyle = lipgloss.NewStyle().Foreground(LoggedIn).Bold(true)
)
