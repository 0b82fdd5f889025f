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

package bolt

import (
	"fmt"

	boltdb "github.com/boltdb/bolt"

	"gopkg.in/src-d/go-queryplan.v0/sql"
)

// Table is a table of a Store. Its rows are read from the database every
// time they are requested.
type Table struct {
	store      *Store
	schemaName string
	name       string
	schema     sql.Schema
}

var _ sql.Table = (*Table)(nil)

// Name implements the sql.Table interface.
func (t *Table) Name() string { return t.name }

// Schema implements the sql.Table interface.
func (t *Table) Schema() sql.Schema { return t.schema }

// Rows implements the sql.Table interface.
func (t *Table) Rows(ctx *sql.Context) ([]sql.Row, error) {
	span, _ := ctx.Span("bolt.Rows")
	defer span.Finish()

	var rows []sql.Row
	err := t.store.view(func(tx *boltdb.Tx) error {
		sb := tx.Bucket([]byte(t.schemaName))
		if sb == nil {
			return sql.ErrDatabaseNotFound.New(t.schemaName)
		}
		tb := sb.Bucket([]byte(t.name))
		if tb == nil {
			return sql.ErrTableNotFound.New(t.String())
		}

		return tb.Bucket(rowsBucket).ForEach(func(_, v []byte) error {
			var row sql.Row
			if err := decode(v, &row); err != nil {
				return ErrCorruptTable.New(t, err)
			}
			rows = append(rows, row)
			return nil
		})
	})
	return rows, err
}

func (t *Table) convert(r sql.Row) (sql.Row, error) {
	if len(r) != len(t.schema) {
		return nil, sql.ErrUnexpectedRowLength.New(len(t.schema), len(r))
	}

	row := make(sql.Row, len(r))
	for i, v := range r {
		c := t.schema[i]
		if v == nil && !c.Nullable {
			return nil, sql.ErrInvalidType.New(fmt.Sprintf("NULL for column %s", c.Name))
		}

		converted, err := c.Type.Convert(v)
		if err != nil {
			return nil, sql.ErrInvalidType.New(fmt.Sprintf("%v for column %s", v, c.Name))
		}
		row[i] = converted
	}
	return row, nil
}

func (t *Table) String() string {
	return sql.NewTableName(t.schemaName, t.name).String()
}
