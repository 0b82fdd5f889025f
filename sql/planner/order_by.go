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
	"fmt"

	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/ast"
	"gopkg.in/src-d/go-queryplan.v0/sql/expression"
	"gopkg.in/src-d/go-queryplan.v0/sql/plan"
)

const orderAggregatePrefix = "#ORDERAG-"

// orderPlan is the resolved ORDER BY clause of a query block. Keys that
// are not columns are computed as FUNCTIONTABLE.#ORDER-<n> right before
// sorting. Aggregates used by those keys are computed by the grouping.
type orderPlan struct {
	fields     []plan.SortField
	functions  functionList
	aggregates functionList
}

func (o *orderPlan) plan(node sql.Node) sql.Node {
	if len(o.functions.exprs) > 0 {
		node = plan.NewCreateFunctions(o.functions.exprs, o.functions.names, node)
	}
	return plan.NewSort(o.fields, node)
}

// prepareOrderBy resolves the sort keys of a query block. A key may be the
// position of a select list entry, a column, an alias, or an expression.
func (p *Planner) prepareOrderBy(
	ctx *sql.Context,
	orderBy []ast.OrderBy,
	scope *Scope,
	cols *columnSet,
	grouped bool,
) (*orderPlan, error) {
	o := new(orderPlan)
	for _, by := range orderBy {
		v, err := p.orderKey(ctx, by.Expr, scope, cols, grouped, o)
		if err != nil {
			return nil, err
		}
		o.fields = append(o.fields, plan.SortField{Column: v, Ascending: by.Ascending})
	}
	return o, nil
}

func (p *Planner) orderKey(
	ctx *sql.Context,
	e sql.Expression,
	scope *Scope,
	cols *columnSet,
	grouped bool,
	o *orderPlan,
) (sql.Variable, error) {
	if n, ok := ordinal(e); ok {
		if n < 1 || n > int64(len(cols.columns)) {
			return sql.Variable{}, sql.ErrUnresolvedOrderBy.New(e)
		}
		return cols.columns[n-1].internal, nil
	}

	if v, ok := e.(*expression.Variable); ok {
		r, found, err := scope.ResolveReference(v.Name())
		if err != nil {
			return sql.Variable{}, err
		}
		if !found {
			return sql.Variable{}, sql.ErrUnresolvedOrderBy.New(e)
		}
		if col, ok := cols.aliased(r); ok {
			return col.internal, nil
		}
		return r, nil
	}

	prepared, err := p.prepareExpression(ctx, e, scope, true)
	if err != nil {
		if sql.ErrUnresolvedReference.Is(err) {
			return sql.Variable{}, sql.ErrUnresolvedOrderBy.New(e)
		}
		return sql.Variable{}, err
	}

	if prepared, err = cols.toInternal(prepared); err != nil {
		return sql.Variable{}, err
	}

	if expression.HasAggregate(prepared) {
		if !grouped {
			return sql.Variable{}, sql.ErrAggregateNotAllowed.New(prepared, "ORDER BY clause of a query without grouping")
		}
		if prepared, err = hoistAggregates(prepared, orderAggregatePrefix, &o.aggregates); err != nil {
			return sql.Variable{}, err
		}
	}

	name := fmt.Sprintf("#ORDER-%d", len(o.functions.exprs)+1)
	return o.functions.add(name, prepared), nil
}

// planCompositeOrderBy sorts the result of a composite chain. Keys can
// only refer to the result columns, by position or by name.
func (p *Planner) planCompositeOrderBy(
	orderBy []ast.OrderBy,
	scope *Scope,
	cols *columnSet,
	node sql.Node,
) (sql.Node, error) {
	fields := make([]plan.SortField, len(orderBy))
	for i, by := range orderBy {
		v, err := compositeOrderKey(by.Expr, scope, cols)
		if err != nil {
			return nil, err
		}
		fields[i] = plan.SortField{Column: v, Ascending: by.Ascending}
	}
	return plan.NewSort(fields, node), nil
}

func compositeOrderKey(e sql.Expression, scope *Scope, cols *columnSet) (sql.Variable, error) {
	if n, ok := ordinal(e); ok {
		if n < 1 || n > int64(len(cols.columns)) {
			return sql.Variable{}, sql.ErrUnresolvedOrderBy.New(e)
		}
		return cols.columns[n-1].resolved, nil
	}

	v, ok := e.(*expression.Variable)
	if !ok {
		return sql.Variable{}, sql.ErrUnresolvedOrderBy.New(e)
	}

	var matches []sql.Variable
	for _, col := range cols.columns {
		if v.Name().Matches(col.resolved, cols.caseInsensitive) {
			matches = appendDistinct(matches, col.resolved)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
	default:
		return sql.Variable{}, sql.ErrAmbiguousReference.New(v)
	}

	if r, found, err := scope.ResolveReference(v.Name()); err == nil && found {
		for _, col := range cols.columns {
			if col.internal == r {
				return col.resolved, nil
			}
		}
	}
	return sql.Variable{}, sql.ErrUnresolvedOrderBy.New(e)
}

// ordinal returns the select list position an integer literal sort key
// stands for.
func ordinal(e sql.Expression) (int64, bool) {
	l, ok := e.(*expression.Literal)
	if !ok {
		return 0, false
	}
	n, ok := l.Value().(int64)
	return n, ok
}
