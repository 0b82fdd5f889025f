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

package planner

import (
	"strconv"

	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/ast"
	"gopkg.in/src-d/go-queryplan.v0/sql/expression"
)

// prepareExpression qualifies the column references of the expression and
// plans its sub-queries in a scope nested in the given one. Select list
// aliases are only resolved when withAliases is set.
func (p *Planner) prepareExpression(
	ctx *sql.Context,
	e sql.Expression,
	scope *Scope,
	withAliases bool,
) (sql.Expression, error) {
	return expression.TransformUp(e, func(e sql.Expression) (sql.Expression, error) {
		switch e := e.(type) {
		case *expression.Variable:
			return scope.GlobalResolveReference(0, e.Name(), withAliases)
		case *expression.Subquery:
			if e.Plan != nil {
				return e, nil
			}
			return p.planSubquery(ctx, e, scope)
		case *expression.Aggregate:
			for _, arg := range e.Children() {
				if expression.HasAggregate(arg) {
					return nil, sql.ErrNestedAggregate.New(e)
				}
			}
		}
		return e, nil
	})
}

func (p *Planner) planSubquery(ctx *sql.Context, sq *expression.Subquery, scope *Scope) (sql.Expression, error) {
	sel, ok := sq.Statement.(*ast.Select)
	if !ok {
		return nil, ErrUnsupportedSubquery.New(sq.Statement)
	}

	p.PushDebugContext("subquery")
	defer p.PopDebugContext()

	sub, err := p.GenerateScope(ctx, sel, scope)
	if err != nil {
		return nil, err
	}

	node, err := p.FormQueryPlan(ctx, sel, sub, nil)
	if err != nil {
		return nil, err
	}
	return sq.WithPlan(node), nil
}

// prepareCondition prepares a WHERE or ON condition. References to select
// list aliases are replaced by the expressions they stand for, which must
// not contain aggregates.
func (p *Planner) prepareCondition(
	ctx *sql.Context,
	e sql.Expression,
	scope *Scope,
	cols *columnSet,
	clause string,
) (sql.Expression, error) {
	e, err := p.prepareExpression(ctx, e, scope, true)
	if err != nil {
		return nil, err
	}

	e, err = cols.dereference(e)
	if err != nil {
		return nil, err
	}

	if expression.HasAggregate(e) {
		return nil, sql.ErrAggregateNotAllowed.New(e, clause)
	}
	return e, nil
}

// hoistAggregates replaces every aggregate call of the expression with a
// reference to a computed column added to fns.
func hoistAggregates(e sql.Expression, prefix string, fns *functionList) (sql.Expression, error) {
	if _, ok := e.(*expression.Aggregate); ok {
		v := fns.add(prefix+strconv.Itoa(len(fns.exprs)+1), e)
		return expression.NewVariable(v), nil
	}

	children := e.Children()
	if len(children) == 0 {
		return e, nil
	}

	hoisted := make([]sql.Expression, len(children))
	for i, c := range children {
		var err error
		if hoisted[i], err = hoistAggregates(c, prefix, fns); err != nil {
			return nil, err
		}
	}
	return e.WithChildren(hoisted...)
}
