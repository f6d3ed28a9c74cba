package dax

import (
	"fmt"
	"strings"
)

const separator = "// -------------------------------------------------------------"
const banner = "// ============================================================="

// RenderScript renders measures as a .dax text script ready to paste into
// the target tool, one commented section per measure.
func RenderScript(title string, measures []Measure) string {
	var b strings.Builder

	fmt.Fprintln(&b, banner)
	fmt.Fprintf(&b, "// DAX Script: %s\n", title)
	fmt.Fprintln(&b, banner)
	fmt.Fprintln(&b, "//")
	fmt.Fprintln(&b, "// INSTRUCTIONS:")
	fmt.Fprintln(&b, "// 1. Open Power BI Desktop")
	fmt.Fprintln(&b, "// 2. Create a new measure per entry below")
	fmt.Fprintln(&b, "// 3. Or import this file with the DAX Editor extension")
	fmt.Fprintln(&b, "//")
	fmt.Fprintln(&b, banner)
	fmt.Fprintln(&b, "// MEASURES")
	fmt.Fprintln(&b, banner)
	fmt.Fprintln(&b)

	for _, m := range measures {
		fmt.Fprintf(&b, "// %s\n", m.Name)
		fmt.Fprintf(&b, "// Description: %s\n", m.Description)
		fmt.Fprintf(&b, "// Category: %s\n", orAuto(m.Category))
		fmt.Fprintf(&b, "// Format: %s\n", orAuto(m.Format))
		fmt.Fprintln(&b)
		if strings.Contains(m.Formula, "\n") {
			fmt.Fprintf(&b, "%s = \n%s\n", m.Name, m.Formula)
		} else {
			fmt.Fprintf(&b, "%s = %s\n", m.Name, m.Formula)
		}
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, separator)
		fmt.Fprintln(&b)
	}

	fmt.Fprintln(&b, banner)
	fmt.Fprintf(&b, "// End of Script: %s\n", title)
	fmt.Fprintln(&b, banner)
	return b.String()
}

func orAuto(s string) string {
	if s == "" {
		return "Auto"
	}
	return s
}
