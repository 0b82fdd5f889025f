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

package plan

import (
	"fmt"

	"gopkg.in/src-d/go-queryplan.v0/sql"
)

// Fetch reads every row of a physical table. Its columns are named after
// the name the table was given in the FROM clause.
type Fetch struct {
	// Table is the physical table to read.
	Table sql.TableName
	// Name is the alias of the table, or the table name itself.
	Name sql.TableName
}

// NewFetch creates a new Fetch node.
func NewFetch(table, name sql.TableName) *Fetch {
	return &Fetch{Table: table, Name: name}
}

// Children implements the Node interface.
func (*Fetch) Children() []sql.Node { return nil }

// Evaluate implements the Node interface.
func (f *Fetch) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.Fetch")
	defer span.Finish()

	catalog := ctx.Catalog()
	if catalog == nil {
		return nil, ErrNoCatalog.New(f.Table)
	}

	schema := f.Table.Schema
	if schema == "" {
		schema = catalog.CurrentSchema()
	}

	table, err := catalog.Table(ctx, schema, f.Table.Name)
	if err != nil {
		return nil, err
	}

	rows, err := table.Rows(ctx)
	if err != nil {
		return nil, err
	}

	columns := make([]sql.Variable, len(table.Schema()))
	for i, c := range table.Schema() {
		columns[i] = sql.NewVariable(f.Name, c.Name)
	}

	return sql.NewBaseRowSet(f.Name.String(), columns, rows), nil
}

// DiscoverTables implements the Node interface.
func (f *Fetch) DiscoverTables(tables []sql.TableName) []sql.TableName {
	return append(tables, f.Table)
}

// DiscoverCorrelated implements the Node interface.
func (*Fetch) DiscoverCorrelated(_ int, list []sql.Correlated) []sql.Correlated {
	return list
}

// Clone implements the Node interface.
func (f *Fetch) Clone() sql.Node {
	nf := *f
	return &nf
}

func (f *Fetch) String() string {
	if f.Table == f.Name {
		return fmt.Sprintf("Fetch(%s)", f.Table)
	}
	return fmt.Sprintf("Fetch(%s AS %s)", f.Table, f.Name)
}
