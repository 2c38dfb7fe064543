package sqlutil

import (
	"fmt"
	"strings"
)

// Dialect selects the SQL flavour of generated statements.
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite"
)

// ParseDialect accepts the dialect names used on the command line.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql", "":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported SQL dialect %q", s)
	}
}

// QuoteIdent quotes a table or column name.
func (d Dialect) QuoteIdent(name string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// GeometryPlaceholder is the bind expression for a WKT point.
func (d Dialect) GeometryPlaceholder() string {
	if d == MySQL {
		return "ST_GeomFromText(?)"
	}
	return "?"
}

func (d Dialect) geometryType() string {
	if d == MySQL {
		return "POINT NOT NULL"
	}
	return "TEXT NOT NULL"
}

func (d Dialect) idColumn() string {
	if d == MySQL {
		return "id INT AUTO_INCREMENT PRIMARY KEY"
	}
	return "id INTEGER PRIMARY KEY AUTOINCREMENT"
}
