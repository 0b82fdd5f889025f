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
	"strings"

	"gopkg.in/src-d/go-queryplan.v0/sql"
)

// Subset projects Columns of its child, renamed as Names. When Source is
// set the rows become base rows of a table source with that name, which is
// how a derived table hides the rows it was built from.
type Subset struct {
	UnaryNode
	Columns []sql.Variable
	Names   []sql.Variable
	Source  string
}

// NewSubset creates a new Subset node.
func NewSubset(columns, names []sql.Variable, source string, child sql.Node) *Subset {
	return &Subset{UnaryNode{child}, columns, names, source}
}

// Evaluate implements the Node interface.
func (s *Subset) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.Subset")
	defer span.Finish()

	rs, err := s.Child.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	positions, err := columnPositions(rs, s.Columns)
	if err != nil {
		return nil, err
	}

	rows := make([]sql.Row, len(rs.Rows))
	for i, r := range rs.Rows {
		row := make(sql.Row, len(positions))
		for c, p := range positions {
			row[c] = r[p]
		}
		rows[i] = row
	}

	if s.Source != "" {
		return sql.NewBaseRowSet(s.Source, s.Names, rows), nil
	}

	return &sql.RowSet{Columns: s.Names, Rows: rows, Origins: rs.Origins}, nil
}

// Clone implements the Node interface.
func (s *Subset) Clone() sql.Node {
	return NewSubset(
		append([]sql.Variable(nil), s.Columns...),
		append([]sql.Variable(nil), s.Names...),
		s.Source,
		s.Child.Clone(),
	)
}

func (s *Subset) String() string {
	parts := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		if c == s.Names[i] {
			parts[i] = c.String()
		} else {
			parts[i] = fmt.Sprintf("%s AS %s", c, s.Names[i])
		}
	}

	p := sql.NewTreePrinter()
	if s.Source != "" {
		_ = p.WriteNode("Subset(%s) AS %s", strings.Join(parts, ", "), s.Source)
	} else {
		_ = p.WriteNode("Subset(%s)", strings.Join(parts, ", "))
	}
	_ = p.WriteChildren(s.Child.String())
	return p.String()
}
