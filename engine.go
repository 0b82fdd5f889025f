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

// Package sqle runs SELECT queries: it parses them, plans them, checks
// that the user may read the tables they use and evaluates the plan.
package sqle

import (
	"context"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"gopkg.in/src-d/go-queryplan.v0/auth"
	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/ast"
	"gopkg.in/src-d/go-queryplan.v0/sql/parse"
	"gopkg.in/src-d/go-queryplan.v0/sql/plan"
	"gopkg.in/src-d/go-queryplan.v0/sql/planner"
)

// Engine is a SQL engine.
type Engine struct {
	Catalog sql.Catalog
	Auth    auth.Auth
	Tracer  opentracing.Tracer

	config Config
	cache  *sql.StatementCache
}

// Result is the outcome of a query.
type Result struct {
	// Columns name the values of every row.
	Columns []sql.Variable
	Rows    []sql.Row
	// Plan is the plan the rows were computed with.
	Plan sql.Node
}

type caseInsensitiveCatalog interface {
	SetCaseInsensitive(bool)
}

// New creates a new Engine with custom configuration. To create an Engine
// with the default settings use NewDefault.
func New(catalog sql.Catalog, cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = new(Config)
	}

	cache, err := sql.NewStatementCache(cfg.StatementCacheSize)
	if err != nil {
		return nil, err
	}

	a, err := cfg.authMethod()
	if err != nil {
		return nil, err
	}

	if c, ok := catalog.(caseInsensitiveCatalog); ok {
		c.SetCaseInsensitive(cfg.CaseInsensitive)
	}

	return &Engine{
		Catalog: catalog,
		Auth:    a,
		Tracer:  opentracing.NoopTracer{},
		config:  *cfg,
		cache:   cache,
	}, nil
}

// NewDefault creates a new default Engine.
func NewDefault(catalog sql.Catalog) *Engine {
	e, err := New(catalog, nil)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Engine) newContext(ctx context.Context, user, query string) *sql.Context {
	return sql.NewContext(ctx,
		sql.WithCatalog(e.Catalog),
		sql.WithTracer(e.Tracer),
		sql.WithUser(user),
		sql.WithQuery(query),
	)
}

// Query runs the query on behalf of the given user.
func (e *Engine) Query(ctx context.Context, user, query string) (result *Result, err error) {
	sctx := e.newContext(ctx, user, query)
	span, sctx := sctx.Span("query")
	defer span.Finish()

	start := time.Now()
	defer func() {
		if a, ok := e.Auth.(*auth.Audit); ok {
			a.Query(sctx, time.Since(start), err)
		}
	}()

	stmt, node, err := e.plan(sctx, query, auth.ReadPerm)
	if err != nil {
		return nil, err
	}

	rs, err := node.Evaluate(sctx)
	if err != nil {
		return nil, err
	}

	rows, err := limitRows(sctx, stmt, rs.Rows)
	if err != nil {
		return nil, err
	}

	sctx.Logger().WithFields(logrus.Fields{
		"rows":     len(rows),
		"duration": time.Since(start),
	}).Debug("query finished")

	return &Result{Columns: rs.Columns, Rows: rows, Plan: node}, nil
}

// Explain returns the plan of the query without evaluating it.
func (e *Engine) Explain(ctx context.Context, user, query string) (string, error) {
	sctx := e.newContext(ctx, user, query)
	span, sctx := sctx.Span("explain")
	defer span.Finish()

	_, node, err := e.plan(sctx, query, auth.ReadPerm|auth.ExplainPerm)
	if err != nil {
		return "", err
	}
	return node.String(), nil
}

func (e *Engine) plan(ctx *sql.Context, query string, perm auth.Permission) (*ast.Select, sql.Node, error) {
	stmt, err := e.parse(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	p := planner.New(e.Catalog, planner.Options{
		Debug:           e.config.Debug,
		CaseInsensitive: e.config.CaseInsensitive,
	})
	node, err := p.Plan(ctx, stmt)
	if err != nil {
		return nil, nil, err
	}

	if err := e.Auth.Allowed(ctx, perm, plan.DiscoverTables(node)); err != nil {
		return nil, nil, err
	}
	return stmt, node, nil
}

// parse returns a private copy of the statement of the query, parsing it
// only when it is not cached.
func (e *Engine) parse(ctx *sql.Context, query string) (*ast.Select, error) {
	cached, err := e.cache.Get(query)
	if err == nil {
		return cached.(*ast.Select), nil
	}
	if !sql.ErrKeyNotFound.Is(err) {
		return nil, err
	}

	stmt, err := parse.Parse(ctx, query)
	if err != nil {
		return nil, err
	}
	e.cache.Put(query, stmt)
	return stmt, nil
}

func limitRows(ctx *sql.Context, stmt *ast.Select, rows []sql.Row) ([]sql.Row, error) {
	offset, err := evalCount(ctx, stmt.Offset)
	if err != nil {
		return nil, err
	}
	if offset > int64(len(rows)) {
		offset = int64(len(rows))
	}
	rows = rows[offset:]

	if stmt.Limit != nil {
		limit, err := evalCount(ctx, stmt.Limit)
		if err != nil {
			return nil, err
		}
		if limit < int64(len(rows)) {
			rows = rows[:limit]
		}
	}
	return rows, nil
}

func evalCount(ctx *sql.Context, e sql.Expression) (int64, error) {
	if e == nil {
		return 0, nil
	}

	v, err := e.Eval(ctx, sql.EmptyRowContext)
	if err != nil {
		return 0, err
	}

	n, err := cast.ToInt64E(v)
	if err != nil || n < 0 {
		return 0, ErrInvalidLimit.New(e)
	}
	return n, nil
}
