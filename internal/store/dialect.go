package store

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type Dialect int

const (
	MySQL Dialect = iota
	Postgres
)

// ParseDialect accepts the DB_DRIVER values.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "mysql":
		return MySQL, nil
	case "postgres", "postgresql", "supabase":
		return Postgres, nil
	}
	return MySQL, fmt.Errorf("unsupported database driver %q", driver)
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "postgres"
	}
	return "mysql"
}

func (d Dialect) String() string {
	return d.DriverName()
}

// placeholder returns the bind parameter for the nth argument, counting from 1.
func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d Dialect) quote(ident string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		if d == Postgres {
			parts[i] = `"` + p + `"`
		} else {
			parts[i] = "`" + p + "`"
		}
	}
	return strings.Join(parts, ".")
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func validTableName(name string) bool {
	return tableName.MatchString(name)
}
