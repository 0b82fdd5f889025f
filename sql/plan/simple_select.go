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

// SimpleSelect selects the rows where "Var Op Expr" holds. Expr is
// evaluated once per evaluation of the node. For IN and NOT IN, Expr is the
// list of values.
type SimpleSelect struct {
	UnaryNode
	Var  sql.Variable
	Op   expression.Operator
	Expr sql.Expression
}

// NewSimpleSelect creates a new SimpleSelect node.
func NewSimpleSelect(v sql.Variable, op expression.Operator, e sql.Expression, child sql.Node) *SimpleSelect {
	return &SimpleSelect{UnaryNode{child}, v, op, e}
}

// Evaluate implements the Node interface.
func (s *SimpleSelect) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.SimpleSelect")
	defer span.Finish()

	rs, err := s.Child.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	col := rs.IndexOf(s.Var)
	if col < 0 {
		return nil, sql.ErrColumnNotFound.New(s.Var.String())
	}

	var test func(v interface{}) (interface{}, error)
	if s.Op.IsMembership() {
		values, err := expression.EvalList(ctx, sql.EmptyRowContext, s.Expr)
		if err != nil {
			return nil, err
		}
		test = func(v interface{}) (interface{}, error) {
			return expression.Membership(s.Op, v, values)
		}
	} else {
		value, err := evalConstant(ctx, s.Expr)
		if err != nil {
			return nil, err
		}
		test = func(v interface{}) (interface{}, error) {
			return expression.Compare(s.Op, v, value)
		}
	}

	return filterRows(rs, func(i int) (bool, error) {
		v, err := test(rs.Rows[i][col])
		return v == true, err
	})
}

// DiscoverTables implements the Node interface.
func (s *SimpleSelect) DiscoverTables(tables []sql.TableName) []sql.TableName {
	return discoverExprTables(s.Child.DiscoverTables(tables), s.Expr)
}

// DiscoverCorrelated implements the Node interface.
func (s *SimpleSelect) DiscoverCorrelated(level int, list []sql.Correlated) []sql.Correlated {
	return discoverExprCorrelated(level, s.Child.DiscoverCorrelated(level, list), s.Expr)
}

// Clone implements the Node interface.
func (s *SimpleSelect) Clone() sql.Node {
	return NewSimpleSelect(s.Var, s.Op, expression.Clone(s.Expr), s.Child.Clone())
}

func (s *SimpleSelect) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("SimpleSelect(%s %s %s)", s.Var, s.Op, s.Expr)
	_ = p.WriteChildren(s.Child.String())
	return p.String()
}
