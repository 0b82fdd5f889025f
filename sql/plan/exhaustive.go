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

// Exhaustive selects the rows of its child for which Expr evaluates to
// true, testing every row.
type Exhaustive struct {
	UnaryNode
	Expr sql.Expression
}

// NewExhaustive creates a new Exhaustive node.
func NewExhaustive(e sql.Expression, child sql.Node) *Exhaustive {
	return &Exhaustive{UnaryNode{child}, e}
}

// Evaluate implements the Node interface.
func (e *Exhaustive) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.Exhaustive")
	defer span.Finish()

	rs, err := e.Child.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	return filterByExpression(ctx, rs, e.Expr)
}

// DiscoverTables implements the Node interface.
func (e *Exhaustive) DiscoverTables(tables []sql.TableName) []sql.TableName {
	return discoverExprTables(e.Child.DiscoverTables(tables), e.Expr)
}

// DiscoverCorrelated implements the Node interface.
func (e *Exhaustive) DiscoverCorrelated(level int, list []sql.Correlated) []sql.Correlated {
	return discoverExprCorrelated(level, e.Child.DiscoverCorrelated(level, list), e.Expr)
}

// Clone implements the Node interface.
func (e *Exhaustive) Clone() sql.Node {
	return NewExhaustive(expression.Clone(e.Expr), e.Child.Clone())
}

func (e *Exhaustive) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("Exhaustive(%s)", e.Expr)
	_ = p.WriteChildren(e.Child.String())
	return p.String()
}

// ConstantSelect returns its child unchanged when Expr is true, and no
// rows at all when it is false or NULL. Expr does not depend on the rows of
// the child.
type ConstantSelect struct {
	UnaryNode
	Expr sql.Expression
}

// NewConstantSelect creates a new ConstantSelect node.
func NewConstantSelect(e sql.Expression, child sql.Node) *ConstantSelect {
	return &ConstantSelect{UnaryNode{child}, e}
}

// Evaluate implements the Node interface.
func (c *ConstantSelect) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.ConstantSelect")
	defer span.Finish()

	rs, err := c.Child.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	v, err := evalConstant(ctx, c.Expr)
	if err != nil {
		return nil, err
	}

	if v == true {
		return rs, nil
	}
	return rs.Filter(nil), nil
}

// DiscoverTables implements the Node interface.
func (c *ConstantSelect) DiscoverTables(tables []sql.TableName) []sql.TableName {
	return discoverExprTables(c.Child.DiscoverTables(tables), c.Expr)
}

// DiscoverCorrelated implements the Node interface.
func (c *ConstantSelect) DiscoverCorrelated(level int, list []sql.Correlated) []sql.Correlated {
	return discoverExprCorrelated(level, c.Child.DiscoverCorrelated(level, list), c.Expr)
}

// Clone implements the Node interface.
func (c *ConstantSelect) Clone() sql.Node {
	return NewConstantSelect(expression.Clone(c.Expr), c.Child.Clone())
}

func (c *ConstantSelect) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("ConstantSelect(%s)", c.Expr)
	_ = p.WriteChildren(c.Child.String())
	return p.String()
}
