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

// SimplePattern selects the rows where a pattern operator applied to Var
// and the constant Expr holds.
type SimplePattern struct {
	UnaryNode
	Var  sql.Variable
	Op   expression.Operator
	Expr sql.Expression
}

// NewSimplePattern creates a new SimplePattern node.
func NewSimplePattern(v sql.Variable, op expression.Operator, e sql.Expression, child sql.Node) *SimplePattern {
	return &SimplePattern{UnaryNode{child}, v, op, e}
}

// Evaluate implements the Node interface.
func (s *SimplePattern) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.SimplePattern")
	defer span.Finish()

	rs, err := s.Child.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	col := rs.IndexOf(s.Var)
	if col < 0 {
		return nil, sql.ErrColumnNotFound.New(s.Var.String())
	}

	pattern, err := evalConstant(ctx, s.Expr)
	if err != nil {
		return nil, err
	}

	return filterRows(rs, func(i int) (bool, error) {
		v, err := expression.Compare(s.Op, rs.Rows[i][col], pattern)
		return v == true, err
	})
}

// DiscoverTables implements the Node interface.
func (s *SimplePattern) DiscoverTables(tables []sql.TableName) []sql.TableName {
	return discoverExprTables(s.Child.DiscoverTables(tables), s.Expr)
}

// DiscoverCorrelated implements the Node interface.
func (s *SimplePattern) DiscoverCorrelated(level int, list []sql.Correlated) []sql.Correlated {
	return discoverExprCorrelated(level, s.Child.DiscoverCorrelated(level, list), s.Expr)
}

// Clone implements the Node interface.
func (s *SimplePattern) Clone() sql.Node {
	return NewSimplePattern(s.Var, s.Op, expression.Clone(s.Expr), s.Child.Clone())
}

func (s *SimplePattern) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("SimplePattern(%s %s %s)", s.Var, s.Op, s.Expr)
	_ = p.WriteChildren(s.Child.String())
	return p.String()
}
