// Package all links every mart backend into the binary. Blank-import it
// from main so init() registration runs.
package all

import (
	_ "salesmart/internal/storage/mssql"
	_ "salesmart/internal/storage/postgres"
	_ "salesmart/internal/storage/sqlite"
)
