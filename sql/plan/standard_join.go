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
	"gopkg.in/src-d/go-queryplan.v0/sql/expression"
)

// StandardJoin joins two sources on "Var Op Expr", where Var is a column
// of the left side and Expr only depends on the columns of the right side.
type StandardJoin struct {
	BinaryNode
	Var  sql.Variable
	Op   expression.Operator
	Expr sql.Expression
}

// NewStandardJoin creates a new StandardJoin node.
func NewStandardJoin(
	left, right sql.Node,
	v sql.Variable,
	op expression.Operator,
	e sql.Expression,
) *StandardJoin {
	return &StandardJoin{BinaryNode{left, right}, v, op, e}
}

// Evaluate implements the Node interface.
func (j *StandardJoin) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.StandardJoin")
	defer span.Finish()

	left, err := j.Left.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	right, err := j.Right.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	col := left.IndexOf(j.Var)
	if col < 0 {
		return nil, sql.ErrColumnNotFound.New(j.Var.String())
	}

	values := make([]interface{}, right.Len())
	for i := range right.Rows {
		values[i], err = j.Expr.Eval(ctx, right.Row(i))
		if err != nil {
			return nil, err
		}
	}

	result := joinedRowSet(left, right)
	for l := range left.Rows {
		for r, value := range values {
			ok, err := expression.Compare(j.Op, left.Rows[l][col], value)
			if err != nil {
				return nil, err
			}
			if ok == true {
				appendJoined(result, left, right, l, r)
			}
		}
	}

	return result, nil
}

// DiscoverTables implements the Node interface.
func (j *StandardJoin) DiscoverTables(tables []sql.TableName) []sql.TableName {
	return discoverExprTables(j.BinaryNode.DiscoverTables(tables), j.Expr)
}

// DiscoverCorrelated implements the Node interface.
func (j *StandardJoin) DiscoverCorrelated(level int, list []sql.Correlated) []sql.Correlated {
	return discoverExprCorrelated(level, j.BinaryNode.DiscoverCorrelated(level, list), j.Expr)
}

// Clone implements the Node interface.
func (j *StandardJoin) Clone() sql.Node {
	return NewStandardJoin(j.Left.Clone(), j.Right.Clone(), j.Var, j.Op, expression.Clone(j.Expr))
}

func (j *StandardJoin) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("StandardJoin(%s %s %s)", j.Var, j.Op, j.Expr)
	_ = p.WriteChildren(j.Left.String(), j.Right.String())
	return p.String()
}
