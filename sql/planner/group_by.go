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
	"gopkg.in/src-d/go-queryplan.v0/sql/expression"
)

// groupByPlan holds the grouping keys of a query block. Keys that are not
// plain columns are computed before grouping as functions.
type groupByPlan struct {
	keys      []sql.Variable
	functions functionList
}

// prepareGroupBy resolves the GROUP BY keys. A key that is a column, or an
// alias of a column, is used directly. Any other key, including an alias
// of a computed select list entry, becomes FUNCTIONTABLE.#GROUPBY-<n>.
func (p *Planner) prepareGroupBy(
	ctx *sql.Context,
	keys []sql.Expression,
	scope *Scope,
	cols *columnSet,
) (*groupByPlan, error) {
	g := new(groupByPlan)
	for _, key := range keys {
		e, err := p.prepareExpression(ctx, key, scope, true)
		if err != nil {
			return nil, err
		}

		var fn sql.Expression
		if v, ok := expression.AsVariable(e); ok {
			col, isAlias := cols.aliased(v)
			if !isAlias {
				g.keys = append(g.keys, v)
				continue
			}
			if cv, ok := expression.AsVariable(col.expr); ok {
				g.keys = append(g.keys, cv)
				continue
			}
			fn = col.expr
		} else if fn, err = cols.dereference(e); err != nil {
			return nil, err
		}

		if expression.HasAggregate(fn) {
			return nil, sql.ErrAggregateInGroupBy.New(fn)
		}

		name := fmt.Sprintf("#GROUPBY-%d", len(g.functions.exprs)+1)
		g.keys = append(g.keys, g.functions.add(name, fn))
	}
	return g, nil
}
