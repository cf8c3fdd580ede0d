// Package table holds a user-defined table of string columns that rows
// can be appended to concurrently and that is materialized once.
package table

import (
	"slices"
	"strings"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/titpetric/verdict/model"
)

// Record is a materialized row, keyed by column in declaration order.
type Record = *orderedmap.OrderedMap[string, string]

// Table declares up to a fixed number of columns and collects rows.
type Table struct {
	mu       sync.Mutex
	limit    int
	columns  []string
	pending  []*Row
	finalize sync.Once
	rows     []Record
}

// New creates a table accepting at most maxColumns columns.
func New(maxColumns int) (*Table, error) {
	if maxColumns < 1 {
		return nil, model.Errorf(model.ErrCodeConfig, "table needs at least one column, got limit %d", maxColumns)
	}
	return &Table{
		limit:   maxColumns,
		columns: make([]string, 0, maxColumns),
	}, nil
}

// AddColumn declares a column. Declaring an existing column is a no-op.
func (t *Table) AddColumn(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.NewError(model.ErrCodeSchema, "column name cannot be empty")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if slices.Contains(t.columns, name) {
		return nil
	}
	if len(t.columns) >= t.limit {
		return model.Errorf(model.ErrCodeSchema, "cannot add column %q, table is limited to %d columns", name, t.limit)
	}
	t.columns = append(t.columns, name)
	return nil
}

// Columns returns the declared columns in order.
func (t *Table) Columns() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.columns)
}

func (t *Table) hasColumn(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Contains(t.columns, name)
}

// AddEntry appends an empty row. At least one column must be declared.
func (t *Table) AddEntry() (*Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.columns) == 0 {
		return nil, model.NewError(model.ErrCodeSchema, "no columns defined, add a column before adding entries")
	}
	row := &Row{
		table:  t,
		values: make(map[string]string),
	}
	t.pending = append(t.pending, row)
	return row, nil
}

// Finalize materializes the queued rows. The first call drains the
// queue; later calls return the same rows and ignore later entries.
func (t *Table) Finalize() []Record {
	t.finalize.Do(func() {
		t.mu.Lock()
		pending := t.pending
		t.pending = nil
		columns := slices.Clone(t.columns)
		t.mu.Unlock()

		rows := make([]Record, 0, len(pending))
		for _, row := range pending {
			rows = append(rows, row.record(columns))
		}
		t.rows = rows
	})
	return t.rows
}

// Row is a single table entry. Only declared columns can be set.
type Row struct {
	table  *Table
	mu     sync.Mutex
	values map[string]string
}

// Set assigns value to column.
func (r *Row) Set(column, value string) error {
	if !r.table.hasColumn(column) {
		return model.Errorf(model.ErrCodeSchema, "column %q is not defined", column)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[column] = value
	return nil
}

// Get returns the value of column, or "" when unset or undeclared.
func (r *Row) Get(column string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.values[column]
}

func (r *Row) record(columns []string) Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := orderedmap.New[string, string](len(columns))
	for _, col := range columns {
		rec.Set(col, r.values[col])
	}
	return rec
}
