package entity

const (
	// ThemeDark is the persisted value and root class of the dark theme.
	ThemeDark = "dark"
	// ThemeLight is the persisted value and root class of the light theme.
	ThemeLight = "light"
)

// ThemePreference is the user's dark/light choice.
type ThemePreference struct {
	DarkMode bool `json:"darkMode"`
}

// Value returns the persisted representation of the preference.
func (p ThemePreference) Value() string {
	if p.DarkMode {
		return ThemeDark
	}

	return ThemeLight
}

// ThemeFromValue parses a persisted value. Anything other than "light" is dark.
func ThemeFromValue(v string) ThemePreference {
	return ThemePreference{DarkMode: v != ThemeLight}
}
