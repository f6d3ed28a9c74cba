package export

import (
	"encoding/json"
	"os"
)

// ThemeFile is the visual theme artifact name.
const ThemeFile = "theme.json"

// Theme is a Power BI report theme: a name plus a hex palette.
type Theme struct {
	Name        string   `json:"name"`
	DataColors  []string `json:"dataColors"`
	Background  string   `json:"background"`
	Foreground  string   `json:"foreground"`
	TableAccent string   `json:"tableAccent"`
}

// DefaultTheme is the palette applied to generated dashboards.
func DefaultTheme() Theme {
	return Theme{
		Name: "Sales Mart",
		DataColors: []string{
			"#118DFF", "#12239E", "#E66C37", "#6B007B",
			"#E044A7", "#744EC2", "#D9B300", "#D64550",
		},
		Background:  "#FFFFFF",
		Foreground:  "#252423",
		TableAccent: "#118DFF",
	}
}

// WriteTheme writes the theme JSON to path.
func WriteTheme(path string, t Theme) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
