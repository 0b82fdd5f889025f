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
	"strings"

	"gopkg.in/src-d/go-queryplan.v0/sql"
)

// Distinct keeps the first row of every set of rows sharing the same
// values of Columns.
type Distinct struct {
	UnaryNode
	Columns []sql.Variable
}

// NewDistinct creates a new Distinct node.
func NewDistinct(columns []sql.Variable, child sql.Node) *Distinct {
	return &Distinct{UnaryNode{child}, columns}
}

// Evaluate implements the Node interface.
func (d *Distinct) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.Distinct")
	defer span.Finish()

	rs, err := d.Child.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	positions, err := columnPositions(rs, d.Columns)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint64]struct{})
	return filterRows(rs, func(i int) (bool, error) {
		values := make([]interface{}, len(positions))
		for k, p := range positions {
			values[k] = rs.Rows[i][p]
		}

		h, err := sql.HashRow(values...)
		if err != nil {
			return false, err
		}

		if _, ok := seen[h]; ok {
			return false, nil
		}
		seen[h] = struct{}{}
		return true, nil
	})
}

func columnPositions(rs *sql.RowSet, columns []sql.Variable) ([]int, error) {
	positions := make([]int, len(columns))
	for i, c := range columns {
		positions[i] = rs.IndexOf(c)
		if positions[i] < 0 {
			return nil, sql.ErrColumnNotFound.New(c.String())
		}
	}
	return positions, nil
}

// Clone implements the Node interface.
func (d *Distinct) Clone() sql.Node {
	return NewDistinct(append([]sql.Variable(nil), d.Columns...), d.Child.Clone())
}

func (d *Distinct) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("Distinct(%s)", variableList(d.Columns))
	_ = p.WriteChildren(d.Child.String())
	return p.String()
}

func variableList(vars []sql.Variable) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
