// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mem

import (
	"fmt"
	"sync"

	"gopkg.in/src-d/go-queryplan.v0/sql"
)

// Table represents an in-memory table.
type Table struct {
	name   string
	schema sql.Schema

	mu   sync.RWMutex
	rows []sql.Row
}

var _ sql.Table = (*Table)(nil)

// NewTable creates a new Table with the given name and schema.
func NewTable(name string, schema sql.Schema) *Table {
	for _, c := range schema {
		if c.Source == "" {
			c.Source = name
		}
	}
	return &Table{name: name, schema: schema}
}

// Name implements the sql.Table interface.
func (t *Table) Name() string {
	return t.name
}

// Schema implements the sql.Table interface.
func (t *Table) Schema() sql.Schema {
	return t.schema
}

// Rows implements the sql.Table interface.
func (t *Table) Rows(*sql.Context) ([]sql.Row, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rows := make([]sql.Row, len(t.rows))
	copy(rows, t.rows)
	return rows, nil
}

// Insert a new row into the table. Values are converted to the types of
// the columns.
func (t *Table) Insert(values ...interface{}) error {
	if len(values) != len(t.schema) {
		return sql.ErrUnexpectedRowLength.New(len(t.schema), len(values))
	}

	row := make(sql.Row, len(values))
	for i, v := range values {
		c := t.schema[i]
		if v == nil && !c.Nullable {
			return ErrNullNotAllowed.New(c.Name, t.name)
		}

		converted, err := c.Type.Convert(v)
		if err != nil {
			return sql.ErrInvalidType.New(fmt.Sprintf("%v for column %s", v, c.Name))
		}
		row[i] = converted
	}

	t.mu.Lock()
	t.rows = append(t.rows, row)
	t.mu.Unlock()
	return nil
}

func (t *Table) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("Table(%s)", t.name)
	var schema = make([]string, len(t.Schema()))
	for i, col := range t.Schema() {
		schema[i] = fmt.Sprintf(
			"Column(%s, %s, nullable=%v)",
			col.Name,
			col.Type.String(),
			col.Nullable,
		)
	}
	_ = p.WriteChildren(schema...)
	return p.String()
}
