package tui

// Color constants for the todus TUI theme
const (
	ColorBorder = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Titles, task names
	ColorSecondaryText = "#B1B8C7" // Labels, pending status
	ColorDisabledText  = "#6D7383" // Missing values, completed tasks
	ColorHelpText      = "240"

	// Accent Colors (Purple theme)
	ColorAccentMain   = "#7C3AED" // Logo, selected row border
	ColorAccentBright = "#A78BFA" // Section headers, due soon

	// State Colors
	ColorError   = "#EF4444" // Overdue, failed actions
	ColorSuccess = "#22C55E" // Completed tasks
	ColorWarning = "#F59E0B" // Due today or tomorrow
)
