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

// MembershipTest selects the rows where the quantified comparison of Var
// against the first column of Subplan holds. Subplan does not reference
// the query block of the node, so it is evaluated once.
type MembershipTest struct {
	UnaryNode
	Var        sql.Variable
	Op         expression.Operator
	Quantifier expression.Quantifier
	Subplan    sql.Node
}

// NewMembershipTest creates a new MembershipTest node.
func NewMembershipTest(
	v sql.Variable,
	op expression.Operator,
	q expression.Quantifier,
	subplan sql.Node,
	child sql.Node,
) *MembershipTest {
	return &MembershipTest{UnaryNode{child}, v, op, q, subplan}
}

// Evaluate implements the Node interface.
func (m *MembershipTest) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.MembershipTest")
	defer span.Finish()

	rs, err := m.Child.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	col := rs.IndexOf(m.Var)
	if col < 0 {
		return nil, sql.ErrColumnNotFound.New(m.Var.String())
	}

	sub, err := m.Subplan.Evaluate(ctx.WithOuterRow(nil))
	if err != nil {
		return nil, err
	}

	values, err := expression.FirstColumn(sub)
	if err != nil {
		return nil, err
	}

	return filterRows(rs, func(i int) (bool, error) {
		v, err := expression.Quantified(m.Op, m.Quantifier, rs.Rows[i][col], values)
		return v == true, err
	})
}

// DiscoverTables implements the Node interface.
func (m *MembershipTest) DiscoverTables(tables []sql.TableName) []sql.TableName {
	return m.Subplan.DiscoverTables(m.Child.DiscoverTables(tables))
}

// DiscoverCorrelated implements the Node interface.
func (m *MembershipTest) DiscoverCorrelated(level int, list []sql.Correlated) []sql.Correlated {
	return m.Subplan.DiscoverCorrelated(level+1, m.Child.DiscoverCorrelated(level, list))
}

// Clone implements the Node interface.
func (m *MembershipTest) Clone() sql.Node {
	return NewMembershipTest(m.Var, m.Op, m.Quantifier, m.Subplan.Clone(), m.Child.Clone())
}

func (m *MembershipTest) String() string {
	p := sql.NewTreePrinter()
	if m.Quantifier == expression.NoQuantifier {
		_ = p.WriteNode("MembershipTest(%s %s)", m.Var, m.Op)
	} else {
		_ = p.WriteNode("MembershipTest(%s %s %s)", m.Var, m.Op, m.Quantifier)
	}
	_ = p.WriteChildren(m.Child.String(), m.Subplan.String())
	return p.String()
}
