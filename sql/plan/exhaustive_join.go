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

// ExhaustiveJoin joins two sources on an arbitrary expression, testing it
// against every pair of rows.
type ExhaustiveJoin struct {
	BinaryNode
	Expr sql.Expression
}

// NewExhaustiveJoin creates a new ExhaustiveJoin node.
func NewExhaustiveJoin(left, right sql.Node, e sql.Expression) *ExhaustiveJoin {
	return &ExhaustiveJoin{BinaryNode{left, right}, e}
}

// Evaluate implements the Node interface.
func (j *ExhaustiveJoin) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.ExhaustiveJoin")
	defer span.Finish()

	left, err := j.Left.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	right, err := j.Right.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	result := joinedRowSet(left, right)
	for l := range left.Rows {
		for r := range right.Rows {
			row := joinRows(left, right, l, r)
			v, err := j.Expr.Eval(ctx, result.RowContextFor(row))
			if err != nil {
				return nil, err
			}
			if v == true {
				result.Append(row, joinOrigins(left, right, l, r))
			}
		}
	}

	return result, nil
}

// DiscoverTables implements the Node interface.
func (j *ExhaustiveJoin) DiscoverTables(tables []sql.TableName) []sql.TableName {
	return discoverExprTables(j.BinaryNode.DiscoverTables(tables), j.Expr)
}

// DiscoverCorrelated implements the Node interface.
func (j *ExhaustiveJoin) DiscoverCorrelated(level int, list []sql.Correlated) []sql.Correlated {
	return discoverExprCorrelated(level, j.BinaryNode.DiscoverCorrelated(level, list), j.Expr)
}

// Clone implements the Node interface.
func (j *ExhaustiveJoin) Clone() sql.Node {
	return NewExhaustiveJoin(j.Left.Clone(), j.Right.Clone(), expression.Clone(j.Expr))
}

func (j *ExhaustiveJoin) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("ExhaustiveJoin(%s)", j.Expr)
	_ = p.WriteChildren(j.Left.String(), j.Right.String())
	return p.String()
}
