// Package color holds the terminal palette shared by the picker and the
// status indicator.
//
// Colors are lipgloss adaptive colors, so the light or dark variant is chosen
// from the terminal background. NO_COLOR and limited terminals are handled by
// lipgloss itself. Set MULTIROOT_THEME to "dark" or "light" to skip detection:
//
//	color.InitializeFromEnv()
//	fmt.Println(color.ActiveStyle.Render("(active)"))
package color
