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
	"sort"
	"strings"

	"gopkg.in/src-d/go-queryplan.v0/sql"
)

// SortField is a column to sort by.
type SortField struct {
	Column    sql.Variable
	Ascending bool
}

func (s SortField) String() string {
	if s.Ascending {
		return s.Column.String() + " ASC"
	}
	return s.Column.String() + " DESC"
}

// Sort orders the rows of its child by the given fields. NULL sorts
// before any other value in ascending order. Rows comparing equal keep
// their relative order.
type Sort struct {
	UnaryNode
	Fields []SortField
}

// NewSort creates a new Sort node.
func NewSort(fields []SortField, child sql.Node) *Sort {
	return &Sort{UnaryNode{child}, fields}
}

// Evaluate implements the Node interface.
func (s *Sort) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.Sort")
	defer span.Finish()

	rs, err := s.Child.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	columns := make([]sql.Variable, len(s.Fields))
	for i, f := range s.Fields {
		columns[i] = f.Column
	}

	positions, err := columnPositions(rs, columns)
	if err != nil {
		return nil, err
	}

	order := make([]int, rs.Len())
	for i := range order {
		order[i] = i
	}

	var sortErr error
	sort.SliceStable(order, func(i, j int) bool {
		a, b := rs.Rows[order[i]], rs.Rows[order[j]]
		for k, p := range positions {
			cmp, err := compareKeys([]interface{}{a[p]}, []interface{}{b[p]})
			if err != nil {
				sortErr = err
				return false
			}
			if cmp == 0 {
				continue
			}
			if !s.Fields[k].Ascending {
				cmp = -cmp
			}
			return cmp < 0
		}
		return false
	})
	if sortErr != nil {
		return nil, sortErr
	}

	return rs.Filter(order), nil
}

// Clone implements the Node interface.
func (s *Sort) Clone() sql.Node {
	return NewSort(append([]SortField(nil), s.Fields...), s.Child.Clone())
}

func (s *Sort) String() string {
	p := sql.NewTreePrinter()
	fields := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = f.String()
	}
	_ = p.WriteNode("Sort(%s)", strings.Join(fields, ", "))
	_ = p.WriteChildren(s.Child.String())
	return p.String()
}
