package export

import (
	"os"

	"salesmart/internal/dax"
)

// MeasuresFile is the DAX script artifact name.
const MeasuresFile = "measures.dax"

// WriteMeasures renders the measure script to path. Binding failures never
// reach this function; they are reported through the manifest.
func WriteMeasures(path, title string, measures []dax.Measure) error {
	return os.WriteFile(path, []byte(dax.RenderScript(title, measures)), 0o644)
}
