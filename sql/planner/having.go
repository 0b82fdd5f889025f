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

import "gopkg.in/src-d/go-queryplan.v0/sql"

const havingAggregatePrefix = "HAVINGAG_"

// prepareHaving prepares the HAVING condition to be evaluated over the
// grouped rows. Aliases become the columns holding their value and every
// aggregate call becomes a computed column FUNCTIONTABLE.HAVINGAG_<n>,
// returned to be computed by the grouping.
func (p *Planner) prepareHaving(
	ctx *sql.Context,
	e sql.Expression,
	scope *Scope,
	cols *columnSet,
) (sql.Expression, functionList, error) {
	var fns functionList
	if e == nil {
		return nil, fns, nil
	}

	e, err := p.prepareExpression(ctx, e, scope, true)
	if err != nil {
		return nil, fns, err
	}

	e, err = cols.toInternal(e)
	if err != nil {
		return nil, fns, err
	}

	e, err = hoistAggregates(e, havingAggregatePrefix, &fns)
	if err != nil {
		return nil, fns, err
	}

	p.Log("having rewritten as %s", e)
	return e, fns, nil
}
