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

import "gopkg.in/src-d/go-queryplan.v0/sql"

// LogicalUnion merges the rows of two plans over the same sources, such as
// the two branches of an OR. Rows are identified by the base rows they
// were built from, so a row selected by both branches appears once.
type LogicalUnion struct {
	BinaryNode
}

// NewLogicalUnion creates a new LogicalUnion node.
func NewLogicalUnion(left, right sql.Node) *LogicalUnion {
	return &LogicalUnion{BinaryNode{left, right}}
}

// Evaluate implements the Node interface.
func (u *LogicalUnion) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.LogicalUnion")
	defer span.Finish()

	left, err := u.Left.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	right, err := u.Right.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	positions := make([]int, len(left.Columns))
	for i, c := range left.Columns {
		positions[i] = right.IndexOf(c)
		if positions[i] < 0 {
			return nil, ErrColumnMismatch.New(c)
		}
	}

	result := sql.NewRowSet(left.Columns...)
	seen := make(map[uint64]struct{}, len(left.Rows)+len(right.Rows))
	add := func(row sql.Row, origin sql.Origin) error {
		key, err := origin.Key()
		if err != nil {
			return err
		}
		if _, ok := seen[key]; ok {
			return nil
		}
		seen[key] = struct{}{}
		result.Append(row, origin)
		return nil
	}

	for i, row := range left.Rows {
		if err := add(row, left.Origins[i]); err != nil {
			return nil, err
		}
	}

	for i, row := range right.Rows {
		aligned := make(sql.Row, len(positions))
		for c, p := range positions {
			aligned[c] = row[p]
		}
		if err := add(aligned, right.Origins[i]); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// Clone implements the Node interface.
func (u *LogicalUnion) Clone() sql.Node {
	return NewLogicalUnion(u.Left.Clone(), u.Right.Clone())
}

func (u *LogicalUnion) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("LogicalUnion")
	_ = p.WriteChildren(u.Left.String(), u.Right.String())
	return p.String()
}
