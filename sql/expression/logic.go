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

package expression

import (
	"fmt"

	"gopkg.in/src-d/go-queryplan.v0/sql"
)

// And checks whether two expressions are true.
type And struct {
	BinaryExpression
}

// NewAnd creates a new And expression.
func NewAnd(left, right sql.Expression) sql.Expression {
	return &And{BinaryExpression{Left: left, Right: right}}
}

// JoinAnd joins several expressions with And. Nil expressions are skipped.
func JoinAnd(exprs ...sql.Expression) sql.Expression {
	var result sql.Expression
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if result == nil {
			result = e
			continue
		}
		result = NewAnd(result, e)
	}
	return result
}

func (a *And) String() string {
	return fmt.Sprintf("(%s AND %s)", a.Left, a.Right)
}

// Eval implements the Expression interface.
func (a *And) Eval(ctx *sql.Context, row sql.RowContext) (interface{}, error) {
	lval, err := a.Left.Eval(ctx, row)
	if err != nil {
		return nil, err
	}

	if lval != nil && !sql.IsTrue(lval) {
		return false, nil
	}

	rval, err := a.Right.Eval(ctx, row)
	if err != nil {
		return nil, err
	}

	if rval != nil && !sql.IsTrue(rval) {
		return false, nil
	}

	if lval == nil || rval == nil {
		return nil, nil
	}

	return true, nil
}

// WithChildren implements the Expression interface.
func (a *And) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 2)
	}
	return NewAnd(children[0], children[1]), nil
}

// Or checks whether one of the two given expressions is true.
type Or struct {
	BinaryExpression
}

// NewOr creates a new Or expression.
func NewOr(left, right sql.Expression) sql.Expression {
	return &Or{BinaryExpression{Left: left, Right: right}}
}

func (o *Or) String() string {
	return fmt.Sprintf("(%s OR %s)", o.Left, o.Right)
}

// Eval implements the Expression interface.
func (o *Or) Eval(ctx *sql.Context, row sql.RowContext) (interface{}, error) {
	lval, err := o.Left.Eval(ctx, row)
	if err != nil {
		return nil, err
	}

	if sql.IsTrue(lval) {
		return true, nil
	}

	rval, err := o.Right.Eval(ctx, row)
	if err != nil {
		return nil, err
	}

	if sql.IsTrue(rval) {
		return true, nil
	}

	if lval == nil || rval == nil {
		return nil, nil
	}

	return false, nil
}

// WithChildren implements the Expression interface.
func (o *Or) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(o, len(children), 2)
	}
	return NewOr(children[0], children[1]), nil
}

// Not is a node that negates an expression.
type Not struct {
	UnaryExpression
}

// NewNot returns a new Not node.
func NewNot(child sql.Expression) *Not {
	return &Not{UnaryExpression{child}}
}

// Eval implements the Expression interface.
func (e *Not) Eval(ctx *sql.Context, row sql.RowContext) (interface{}, error) {
	v, err := e.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}

	if v == nil {
		return nil, nil
	}

	return !sql.IsTrue(v), nil
}

// WithChildren implements the Expression interface.
func (e *Not) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 1)
	}
	return NewNot(children[0]), nil
}

func (e *Not) String() string {
	return fmt.Sprintf("NOT(%s)", e.Child)
}
