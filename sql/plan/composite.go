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
	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/ast"
)

// CompositeSource is the source name given to the rows built by Composite.
const CompositeSource = "#COMPOSITE"

// Composite combines the results of two query blocks with a set
// operation. Rows are compared by value. Without All, the result has no
// duplicate rows. The columns are the columns of the left side.
type Composite struct {
	BinaryNode
	Op  ast.CompositeOp
	All bool
}

// NewComposite creates a new Composite node.
func NewComposite(op ast.CompositeOp, all bool, left, right sql.Node) *Composite {
	return &Composite{BinaryNode{left, right}, op, all}
}

// Evaluate implements the Node interface.
func (c *Composite) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.Composite")
	defer span.Finish()

	left, err := c.Left.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	right, err := c.Right.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	if len(left.Columns) != len(right.Columns) {
		return nil, ErrCompositeColumns.New(c.Op, len(left.Columns), len(right.Columns))
	}

	leftKeys, err := rowHashes(left)
	if err != nil {
		return nil, err
	}

	rightKeys, err := rowHashes(right)
	if err != nil {
		return nil, err
	}

	var rows []sql.Row
	emitted := make(map[uint64]struct{})
	emit := func(row sql.Row, key uint64) {
		if !c.All {
			if _, ok := emitted[key]; ok {
				return
			}
			emitted[key] = struct{}{}
		}
		rows = append(rows, row)
	}

	switch c.Op {
	case ast.Union:
		for i, row := range left.Rows {
			emit(row, leftKeys[i])
		}
		for i, row := range right.Rows {
			emit(row, rightKeys[i])
		}
	case ast.Intersect, ast.Except:
		counts := make(map[uint64]int)
		for _, k := range rightKeys {
			counts[k]++
		}

		for i, row := range left.Rows {
			key := leftKeys[i]
			n, inRight := counts[key]
			inRight = inRight && n > 0
			if c.All && inRight {
				counts[key]--
			}

			if (c.Op == ast.Intersect) == inRight {
				emit(row, key)
			}
		}
	}

	return sql.NewBaseRowSet(CompositeSource, left.Columns, rows), nil
}

func rowHashes(rs *sql.RowSet) ([]uint64, error) {
	keys := make([]uint64, len(rs.Rows))
	for i, row := range rs.Rows {
		h, err := sql.HashRow(row...)
		if err != nil {
			return nil, err
		}
		keys[i] = h
	}
	return keys, nil
}

// Clone implements the Node interface.
func (c *Composite) Clone() sql.Node {
	return NewComposite(c.Op, c.All, c.Left.Clone(), c.Right.Clone())
}

func (c *Composite) String() string {
	p := sql.NewTreePrinter()
	if c.All {
		_ = p.WriteNode("Composite(%s ALL)", c.Op)
	} else {
		_ = p.WriteNode("Composite(%s)", c.Op)
	}
	_ = p.WriteChildren(c.Left.String(), c.Right.String())
	return p.String()
}
