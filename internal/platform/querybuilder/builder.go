// Package querybuilder assembles parameterized Postgres statements for
// the repository layer. It only covers the shapes the repositories
// actually emit; anything fancier belongs in hand-written SQL.
package querybuilder

import (
	"fmt"
	"strings"
)

// Cond is a single WHERE predicate.
type Cond struct {
	expr   string
	values []any
}

// Eq builds "column = $n".
func Eq(column string, value any) Cond {
	return Cond{expr: column + " = %s", values: []any{value}}
}

// In builds "column IN ($n, ...)". An empty value list matches nothing.
func In(column string, values ...any) Cond {
	if len(values) == 0 {
		return Cond{expr: "FALSE"}
	}
	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = "%s"
	}
	return Cond{
		expr:   column + " IN (" + strings.Join(placeholders, ", ") + ")",
		values: values,
	}
}

// IsNull builds "column IS NULL".
func IsNull(column string) Cond {
	return Cond{expr: column + " IS NULL"}
}

// Expr is an escape hatch for raw predicates. Placeholders are written
// as %s and rewritten to $n during Build.
func Expr(expr string, values ...any) Cond {
	return Cond{expr: expr, values: values}
}

// SelectBuilder assembles a SELECT statement.
type SelectBuilder struct {
	columns []string
	table   string
	conds   []Cond
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conds ...Cond) *SelectBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

func (b *SelectBuilder) OrderBy(exprs ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, exprs...)
	return b
}

func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = n
	return b
}

func (b *SelectBuilder) Build() (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(b.columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)

	args := writeWhere(&sb, b.conds, nil)

	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", b.limit)
	}

	return numberPlaceholders(sb.String()), args
}

// InsertBuilder assembles an INSERT statement with an optional
// ON CONFLICT upsert clause.
type InsertBuilder struct {
	table      string
	columns    []string
	values     []any
	conflict   string
	updateCols []string
	returning  []string
}

func Insert(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Set(column string, value any) *InsertBuilder {
	b.columns = append(b.columns, column)
	b.values = append(b.values, value)
	return b
}

// OnConflictUpdate emits "ON CONFLICT (target) DO UPDATE SET
// col = EXCLUDED.col, ..." for the given columns.
func (b *InsertBuilder) OnConflictUpdate(target string, columns ...string) *InsertBuilder {
	b.conflict = target
	b.updateCols = columns
	return b
}

func (b *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	b.returning = columns
	return b
}

func (b *InsertBuilder) Build() (string, []any) {
	placeholders := make([]string, len(b.columns))
	for i := range b.columns {
		placeholders[i] = "%s"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES (%s)",
		b.table,
		strings.Join(b.columns, ", "),
		strings.Join(placeholders, ", "),
	)

	if b.conflict != "" {
		fmt.Fprintf(&sb, " ON CONFLICT (%s) DO UPDATE SET ", b.conflict)
		sets := make([]string, len(b.updateCols))
		for i, col := range b.updateCols {
			sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
		}
		sb.WriteString(strings.Join(sets, ", "))
	}
	if len(b.returning) > 0 {
		sb.WriteString(" RETURNING ")
		sb.WriteString(strings.Join(b.returning, ", "))
	}

	return numberPlaceholders(sb.String()), b.values
}

// UpdateBuilder assembles an UPDATE statement.
type UpdateBuilder struct {
	table   string
	columns []string
	values  []any
	conds   []Cond
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.columns = append(b.columns, column)
	b.values = append(b.values, value)
	return b
}

func (b *UpdateBuilder) Where(conds ...Cond) *UpdateBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

func (b *UpdateBuilder) Build() (string, []any) {
	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(b.table)
	sb.WriteString(" SET ")

	sets := make([]string, len(b.columns))
	for i, col := range b.columns {
		sets[i] = col + " = %s"
	}
	sb.WriteString(strings.Join(sets, ", "))

	args := append([]any(nil), b.values...)
	args = writeWhere(&sb, b.conds, args)

	return numberPlaceholders(sb.String()), args
}

func writeWhere(sb *strings.Builder, conds []Cond, args []any) []any {
	if len(conds) == 0 {
		return args
	}
	sb.WriteString(" WHERE ")
	exprs := make([]string, len(conds))
	for i, c := range conds {
		exprs[i] = c.expr
		args = append(args, c.values...)
	}
	sb.WriteString(strings.Join(exprs, " AND "))
	return args
}

// numberPlaceholders rewrites %s markers into sequential $n bindings.
func numberPlaceholders(query string) string {
	var sb strings.Builder
	n := 0
	for {
		idx := strings.Index(query, "%s")
		if idx < 0 {
			sb.WriteString(query)
			return sb.String()
		}
		n++
		sb.WriteString(query[:idx])
		fmt.Fprintf(&sb, "$%d", n)
		query = query[idx+2:]
	}
}
