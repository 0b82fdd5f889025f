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

// functionList is a list of computed columns and their names.
type functionList struct {
	exprs []sql.Expression
	names []sql.Variable
}

// add appends a computed column named FUNCTIONTABLE.<name>.
func (l *functionList) add(name string, e sql.Expression) sql.Variable {
	v := sql.Variable{Table: sql.FunctionTableName, Column: name}
	l.exprs = append(l.exprs, e)
	l.names = append(l.names, v)
	return v
}

func (l functionList) concat(o functionList) functionList {
	var result functionList
	result.exprs = append(append(result.exprs, l.exprs...), o.exprs...)
	result.names = append(append(result.names, l.names...), o.names...)
	return result
}

// selectColumn is an entry of the expanded select list. Internal is the
// column holding its value in the plan and resolved the name it is given
// in the result.
type selectColumn struct {
	expr     sql.Expression
	internal sql.Variable
	resolved sql.Variable
}

// columnSet is the select list of a query block with globs expanded.
type columnSet struct {
	caseInsensitive bool
	columns         []selectColumn
	functions       functionList
	aggregates      int
}

// selectColumns expands and qualifies the select list. Computed columns
// are named FUNCTIONTABLE.<n>, with an _A suffix for aggregates.
func (p *Planner) selectColumns(ctx *sql.Context, sel *ast.Select, scope *Scope) (*columnSet, error) {
	cs := &columnSet{caseInsensitive: p.CaseInsensitive}

	for _, c := range sel.Columns {
		if c.Glob {
			var vars []sql.Variable
			if c.GlobTable.IsEmpty() {
				for _, src := range scope.Sources() {
					vars = append(vars, src.Columns()...)
				}
			} else {
				src := scope.FindTable(c.GlobTable.Schema, c.GlobTable.Name)
				if src == nil {
					return nil, sql.ErrTableNotFound.New(c.GlobTable.String())
				}
				vars = src.Columns()
			}

			for _, v := range vars {
				cs.columns = append(cs.columns, selectColumn{
					expr:     expression.NewVariable(v),
					internal: v,
					resolved: v,
				})
			}
			continue
		}

		e, err := p.prepareExpression(ctx, c.Expr, scope, false)
		if err != nil {
			return nil, err
		}

		col := selectColumn{expr: e}
		if v, ok := expression.AsVariable(e); ok {
			col.internal = v
		} else {
			name := strconv.Itoa(len(cs.functions.exprs) + 1)
			if expression.HasAggregate(e) {
				name += "_A"
				cs.aggregates++
			}
			col.internal = cs.functions.add(name, e)
		}
		col.resolved = col.internal
		cs.columns = append(cs.columns, col)
	}

	if exposed := scope.ResolvedVariables(); len(exposed) == len(cs.columns) {
		for i := range cs.columns {
			cs.columns[i].resolved = exposed[i]
		}
	}

	return cs, nil
}

func (c *columnSet) firstAggregate() sql.Expression {
	for _, e := range c.functions.exprs {
		if expression.HasAggregate(e) {
			return e
		}
	}
	return nil
}

func (c *columnSet) internalNames() []sql.Variable {
	result := make([]sql.Variable, len(c.columns))
	for i, col := range c.columns {
		result[i] = col.internal
	}
	return result
}

func (c *columnSet) resolvedNames() []sql.Variable {
	result := make([]sql.Variable, len(c.columns))
	for i, col := range c.columns {
		result[i] = col.resolved
	}
	return result
}

// aliased returns the column a reference to a select list alias stands
// for.
func (c *columnSet) aliased(v sql.Variable) (selectColumn, bool) {
	if v.IsQualified() || v.Schema != "" || v.Catalog != "" {
		return selectColumn{}, false
	}
	for _, col := range c.columns {
		if !col.resolved.IsQualified() && equalNames(col.resolved.Column, v.Column, c.caseInsensitive) {
			return col, true
		}
	}
	return selectColumn{}, false
}

// dereference replaces references to select list aliases with the
// expressions they stand for.
func (c *columnSet) dereference(e sql.Expression) (sql.Expression, error) {
	return c.replaceAliases(e, func(col selectColumn) sql.Expression { return col.expr })
}

// toInternal replaces references to select list aliases with the columns
// holding their value.
func (c *columnSet) toInternal(e sql.Expression) (sql.Expression, error) {
	return c.replaceAliases(e, func(col selectColumn) sql.Expression {
		return expression.NewVariable(col.internal)
	})
}

func (c *columnSet) replaceAliases(e sql.Expression, f func(selectColumn) sql.Expression) (sql.Expression, error) {
	return expression.TransformUp(e, func(e sql.Expression) (sql.Expression, error) {
		v, ok := e.(*expression.Variable)
		if !ok {
			return e, nil
		}
		if col, ok := c.aliased(v.Name()); ok {
			return f(col), nil
		}
		return e, nil
	})
}
