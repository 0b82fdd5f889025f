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

// Range selects the rows whose value of Var falls in the set of intervals
// described by Expr. Expr is an AND/OR tree of comparisons between Var and
// expressions constant for the query block.
type Range struct {
	UnaryNode
	Var  sql.Variable
	Expr sql.Expression
}

// NewRange creates a new Range node.
func NewRange(v sql.Variable, e sql.Expression, child sql.Node) *Range {
	return &Range{UnaryNode{child}, v, e}
}

// Intervals computes the interval set selected by the node.
func (r *Range) Intervals(ctx *sql.Context) (IntervalSet, error) {
	return r.intervals(ctx, r.Expr)
}

func (r *Range) intervals(ctx *sql.Context, e sql.Expression) (IntervalSet, error) {
	left, op, right, ok := expression.Split(e)
	if !ok {
		return nil, ErrInvalidRangeExpression.New(r.Var, e)
	}

	switch op {
	case expression.OpAnd, expression.OpOr:
		l, err := r.intervals(ctx, left)
		if err != nil {
			return nil, err
		}
		rs, err := r.intervals(ctx, right)
		if err != nil {
			return nil, err
		}
		if op == expression.OpAnd {
			return l.Intersect(rs)
		}
		return l.Union(rs)
	}

	if !op.IsRange() {
		return nil, ErrInvalidRangeExpression.New(r.Var, e)
	}

	bound := right
	if v, ok := expression.AsVariable(left); !ok || v != r.Var {
		if v, ok := expression.AsVariable(right); !ok || v != r.Var {
			return nil, ErrInvalidRangeExpression.New(r.Var, e)
		}
		bound, op = left, op.Reverse()
	}

	value, err := evalConstant(ctx, bound)
	if err != nil {
		return nil, err
	}

	return NewIntervalSet(op, value)
}

// Evaluate implements the Node interface.
func (r *Range) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.Range")
	defer span.Finish()

	rs, err := r.Child.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	set, err := r.Intervals(ctx)
	if err != nil {
		return nil, err
	}

	col := rs.IndexOf(r.Var)
	if col < 0 {
		return nil, sql.ErrColumnNotFound.New(r.Var.String())
	}

	return filterRows(rs, func(i int) (bool, error) {
		return set.Contains(rs.Rows[i][col])
	})
}

// DiscoverTables implements the Node interface.
func (r *Range) DiscoverTables(tables []sql.TableName) []sql.TableName {
	return discoverExprTables(r.Child.DiscoverTables(tables), r.Expr)
}

// DiscoverCorrelated implements the Node interface.
func (r *Range) DiscoverCorrelated(level int, list []sql.Correlated) []sql.Correlated {
	return discoverExprCorrelated(level, r.Child.DiscoverCorrelated(level, list), r.Expr)
}

// Clone implements the Node interface.
func (r *Range) Clone() sql.Node {
	return NewRange(r.Var, expression.Clone(r.Expr), r.Child.Clone())
}

func (r *Range) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("Range(%s: %s)", r.Var, r.Expr)
	_ = p.WriteChildren(r.Child.String())
	return p.String()
}
