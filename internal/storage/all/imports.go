// Package all registers every storage backend. Import it for side effects.
package all

import (
	_ "dataval/internal/storage/mssql"
	_ "dataval/internal/storage/mysql"
	_ "dataval/internal/storage/postgres"
	_ "dataval/internal/storage/sqlite"
)
