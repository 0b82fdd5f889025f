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

// Package planner turns parsed SELECT statements into evaluation plans.
package planner

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/ast"
	"gopkg.in/src-d/go-queryplan.v0/sql/expression"
	"gopkg.in/src-d/go-queryplan.v0/sql/plan"
)

const debugPlannerKey = "DEBUG_PLANNER"

// Options configures a Planner.
type Options struct {
	// Debug logs every planning decision.
	Debug bool
	// CaseInsensitive makes identifiers match regardless of case.
	CaseInsensitive bool
}

// Planner builds the plan of a query. A Planner must not be used from
// several goroutines at once.
type Planner struct {
	// Catalog the tables of the queries are taken from. When nil the
	// catalog of the context is used.
	Catalog sql.Catalog
	// Whether to log planning decisions.
	Debug bool
	// Whether identifiers are case insensitive.
	CaseInsensitive bool

	contextStack []string
}

// New returns a planner reading tables from the given catalog. Debug is
// also enabled by setting the DEBUG_PLANNER environment variable.
func New(catalog sql.Catalog, opts Options) *Planner {
	_, debug := os.LookupEnv(debugPlannerKey)
	return &Planner{
		Catalog:         catalog,
		Debug:           debug || opts.Debug,
		CaseInsensitive: opts.CaseInsensitive,
	}
}

// Log prints an INFO message to stdout with the given message and args
// if the planner is in debug mode.
func (p *Planner) Log(msg string, args ...interface{}) {
	if p != nil && p.Debug {
		if len(p.contextStack) > 0 {
			ctx := strings.Join(p.contextStack, "/")
			logrus.Infof("%s: "+msg, append([]interface{}{ctx}, args...)...)
		} else {
			logrus.Infof(msg, args...)
		}
	}
}

// PushDebugContext pushes the given context string onto the context stack.
func (p *Planner) PushDebugContext(msg string) {
	if p != nil && p.Debug {
		p.contextStack = append(p.contextStack, msg)
	}
}

// PopDebugContext pops a context message off the context stack.
func (p *Planner) PopDebugContext() {
	if p != nil && len(p.contextStack) > 0 {
		p.contextStack = p.contextStack[:len(p.contextStack)-1]
	}
}

// Plan returns the plan of a top level query.
func (p *Planner) Plan(ctx *sql.Context, sel *ast.Select) (sql.Node, error) {
	span, ctx := ctx.Span("planner.Plan")
	defer span.Finish()

	scope, err := p.GenerateScope(ctx, sel, nil)
	if err != nil {
		return nil, err
	}

	node, err := p.formQueryPlan(ctx, sel, scope, sel.OrderBy, true)
	if err != nil {
		return nil, err
	}

	p.Log("plan of %s:\n%s", sel, node)
	return node, nil
}

// GenerateScope builds the scope of a query block: its FROM items, with
// derived tables planned on the way, and the aliases and exposed columns
// of its select list.
func (p *Planner) GenerateScope(ctx *sql.Context, sel *ast.Select, parent *Scope) (*Scope, error) {
	scope := NewScope(parent, p.CaseInsensitive)

	for i, item := range sel.From.Items {
		var src TableSource
		if item.IsSubquery() {
			// Derived tables can not see the other items of the FROM
			// clause, only the enclosing blocks.
			sub, err := p.GenerateScope(ctx, item.Subquery, parent)
			if err != nil {
				return nil, err
			}

			p.PushDebugContext("derived")
			node, err := p.FormQueryPlan(ctx, item.Subquery, sub, nil)
			p.PopDebugContext()
			if err != nil {
				return nil, err
			}

			src = NewSubquerySource(sub, node, item.Alias, i+1)
		} else {
			table, err := p.table(ctx, item.Table)
			if err != nil {
				return nil, err
			}

			given := item.Table
			if item.Alias != "" {
				given = sql.NewTableName("", item.Alias)
			}
			src = NewDirectSource(item.Table, given, table.Schema(), p.CaseInsensitive)
		}

		if err := scope.AddTable(src); err != nil {
			return nil, err
		}
	}

	for _, c := range sel.Columns {
		if c.Glob {
			if c.GlobTable.IsEmpty() {
				scope.ExposeAllColumns()
			} else if err := scope.ExposeAllColumnsFromSource(c.GlobTable); err != nil {
				return nil, err
			}
			continue
		}

		v, isVar := expression.AsVariable(c.Expr)
		aliasMatchesVar := isVar && c.Alias != "" && equalNames(v.Column, c.Alias, p.CaseInsensitive)
		switch {
		case c.Alias != "" && !aliasMatchesVar:
			scope.AddFunctionRef(c.Alias, c.Expr)
			scope.ExposeVariable(sql.Variable{Column: c.Alias})
		case isVar:
			resolved, ok, err := scope.ResolveColumnReference(v)
			if err != nil {
				return nil, err
			}
			if !ok {
				resolved = v
			}
			scope.ExposeVariable(resolved)
		default:
			name := c.Expr.String()
			scope.AddFunctionRef(name, c.Expr)
			scope.ExposeVariable(sql.Variable{Column: name})
		}
	}

	return scope, nil
}

func (p *Planner) table(ctx *sql.Context, name sql.TableName) (sql.Table, error) {
	catalog := p.Catalog
	if catalog == nil {
		catalog = ctx.Catalog()
	}
	if catalog == nil {
		return nil, plan.ErrNoCatalog.New(name)
	}

	schema := name.Schema
	if schema == "" {
		schema = catalog.CurrentSchema()
	}
	return catalog.Table(ctx, schema, name.Name)
}

// FormQueryPlan plans a query block whose scope was built with
// GenerateScope. The result always ends with a Subset naming the columns
// the block exposes.
func (p *Planner) FormQueryPlan(
	ctx *sql.Context,
	sel *ast.Select,
	scope *Scope,
	orderBy []ast.OrderBy,
) (sql.Node, error) {
	return p.formQueryPlan(ctx, sel, scope, orderBy, false)
}

func (p *Planner) formQueryPlan(
	ctx *sql.Context,
	sel *ast.Select,
	scope *Scope,
	orderBy []ast.OrderBy,
	topLevel bool,
) (sql.Node, error) {
	span, ctx := ctx.Span("planner.FormQueryPlan")
	defer span.Finish()

	p.PushDebugContext("select")
	defer p.PopDebugContext()

	cols, err := p.selectColumns(ctx, sel, scope)
	if err != nil {
		return nil, err
	}

	if sel.From.IsEmpty() && cols.aggregates > 0 {
		return nil, sql.ErrAggregateNotAllowed.New(cols.firstAggregate(), "a query without FROM clause")
	}

	t := newTableSetPlanner(p)
	if sel.From.IsEmpty() {
		t.addTableSource(plan.NewSingleRowTable(), nil)
	}
	for _, src := range scope.Sources() {
		t.addTableSource(src.Plan(), src.Columns(), src.UniqueName())
	}

	conditions := []sql.Expression{sel.Where}
	for i, j := range sel.From.Joins {
		if j.Type.IsOuter() {
			left, right := scope.Sources()[i], scope.Sources()[i+1]
			if j.On == nil {
				return nil, ErrMalformedOuterJoin.New(left.UniqueName(), right.UniqueName())
			}
			on, err := p.prepareCondition(ctx, j.On, scope, cols, "ON clause")
			if err != nil {
				return nil, err
			}
			t.setJoinInfoBetweenSources(i, i+1, j.Type, on)
			continue
		}
		conditions = append(conditions, j.On)
	}

	where := expression.JoinAnd(conditions...)
	if where != nil {
		if where, err = p.prepareCondition(ctx, where, scope, cols, "WHERE clause"); err != nil {
			return nil, err
		}
	}

	having, havingFuncs, err := p.prepareHaving(ctx, sel.Having, scope, cols)
	if err != nil {
		return nil, err
	}

	groupBy, err := p.prepareGroupBy(ctx, sel.GroupBy, scope, cols)
	if err != nil {
		return nil, err
	}

	grouped := cols.aggregates > 0 || len(sel.GroupBy) > 0 || len(havingFuncs.exprs) > 0

	var order *orderPlan
	if sel.Composite == nil && len(orderBy) > 0 {
		if order, err = p.prepareOrderBy(ctx, orderBy, scope, cols, grouped); err != nil {
			return nil, err
		}
	}

	p.PushDebugContext("where")
	node, err := t.planSearchExpression(where)
	p.PopDebugContext()
	if err != nil {
		return nil, err
	}

	functions := cols.functions.concat(havingFuncs)
	if order != nil {
		functions = functions.concat(order.aggregates)
	}

	if grouped {
		if len(groupBy.functions.exprs) > 0 {
			node = plan.NewCreateFunctions(groupBy.functions.exprs, groupBy.functions.names, node)
		}
		node = plan.NewGroup(groupBy.keys, functions.exprs, functions.names, node)
	} else if len(functions.exprs) > 0 {
		node = plan.NewCreateFunctions(functions.exprs, functions.names, node)
	}

	if having != nil {
		t.updatePlan(t.single(), node)
		p.PushDebugContext("having")
		node, err = t.planSearchExpression(having)
		p.PopDebugContext()
		if err != nil {
			return nil, err
		}
	}

	internal := cols.internalNames()
	if sel.Distinct {
		node = plan.NewDistinct(internal, node)
	}

	if order != nil {
		node = order.plan(node)
	}

	unprojected := topLevel && sel.Composite == nil && !grouped &&
		isPlainStar(sel) && (order == nil || len(order.functions.exprs) == 0)
	if !unprojected {
		node = plan.NewSubset(internal, cols.resolvedNames(), "", node)
	}

	if sel.Composite != nil {
		if node, err = p.planComposite(ctx, sel, scope, node); err != nil {
			return nil, err
		}
		if len(orderBy) > 0 {
			if node, err = p.planCompositeOrderBy(orderBy, scope, cols, node); err != nil {
				return nil, err
			}
		}
	}

	return node, nil
}

// planComposite combines the plan of the first block of a composite chain
// with the plans of the following blocks, left to right.
func (p *Planner) planComposite(ctx *sql.Context, sel *ast.Select, scope *Scope, left sql.Node) (sql.Node, error) {
	p.PushDebugContext("composite")
	defer p.PopDebugContext()

	node := left
	for c := sel.Composite; c != nil; c = c.Next.Composite {
		next := *c.Next
		next.Composite = nil
		next.OrderBy = nil

		sub, err := p.GenerateScope(ctx, &next, scope.Parent())
		if err != nil {
			return nil, err
		}
		right, err := p.FormQueryPlan(ctx, &next, sub, nil)
		if err != nil {
			return nil, err
		}

		node = plan.NewComposite(c.Op, c.All, node, right)
	}
	return node, nil
}

func isPlainStar(sel *ast.Select) bool {
	return len(sel.Columns) == 1 && sel.Columns[0].Glob && sel.Columns[0].GlobTable.IsEmpty()
}
