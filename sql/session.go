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

package sql

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

// Context of the query execution.
type Context struct {
	context.Context
	id      uuid.UUID
	catalog Catalog
	user    string
	query   string
	tracer  opentracing.Tracer
	logger  *logrus.Entry
	outer   []RowContext
	eval    *evalState
}

// evalState holds what nodes remember during a single evaluation of a plan.
type evalState struct {
	results map[uint64]*RowSet
	marked  map[string]*RowSet
}

func newEvalState() *evalState {
	return &evalState{
		results: make(map[uint64]*RowSet),
		marked:  make(map[string]*RowSet),
	}
}

// ContextOption is a function to configure the context.
type ContextOption func(*Context)

// WithCatalog adds the given catalog to the context.
func WithCatalog(c Catalog) ContextOption {
	return func(ctx *Context) {
		ctx.catalog = c
	}
}

// WithUser sets the name of the user running the query.
func WithUser(name string) ContextOption {
	return func(ctx *Context) {
		ctx.user = name
	}
}

// WithQuery sets the text of the query being run.
func WithQuery(q string) ContextOption {
	return func(ctx *Context) {
		ctx.query = q
	}
}

// WithTracer adds the given tracer to the context.
func WithTracer(t opentracing.Tracer) ContextOption {
	return func(ctx *Context) {
		ctx.tracer = t
	}
}

// WithLogger sets the logger of the context.
func WithLogger(l *logrus.Entry) ContextOption {
	return func(ctx *Context) {
		ctx.logger = l
	}
}

// NewContext creates a new query context. Options can be passed to configure
// the context.
func NewContext(
	ctx context.Context,
	opts ...ContextOption,
) *Context {
	id, err := uuid.NewV4()
	if err != nil {
		logrus.WithField("err", err).Warn("unable to generate context id")
	}

	c := &Context{
		Context: ctx,
		id:      id,
		tracer:  opentracing.NoopTracer{},
		eval:    newEvalState(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logrus.StandardLogger().WithField("context", id.String())
	}

	return c
}

// NewEmptyContext returns a default context with default values.
func NewEmptyContext() *Context { return NewContext(context.TODO()) }

// ID returns the unique id of the context.
func (c *Context) ID() uuid.UUID { return c.id }

// Catalog returns the catalog tables are read from.
func (c *Context) Catalog() Catalog { return c.catalog }

// User returns the name of the user running the query.
func (c *Context) User() string { return c.user }

// Query returns the text of the query being run.
func (c *Context) Query() string { return c.query }

// Logger returns the logger of the context.
func (c *Context) Logger() *logrus.Entry { return c.logger }

// Span creates a new tracing span with the given context.
// It will return the span and a new context that should be passed to all
// childrens of this span.
func (c *Context) Span(
	opName string,
	opts ...opentracing.StartSpanOption,
) (opentracing.Span, *Context) {
	parentSpan := opentracing.SpanFromContext(c.Context)
	if parentSpan != nil {
		opts = append(opts, opentracing.ChildOf(parentSpan.Context()))
	}
	span := c.tracer.StartSpan(opName, opts...)
	ctx := opentracing.ContextWithSpan(c.Context, span)

	return span, c.WithContext(ctx)
}

// WithContext returns a new context with the given underlying context.
func (c *Context) WithContext(ctx context.Context) *Context {
	nc := *c
	nc.Context = ctx
	return &nc
}

// WithOuterRow returns a context to evaluate a sub-query for the given row
// of the enclosing query block. The new context starts with empty
// evaluation caches. A nil row is allowed for sub-queries that do not
// reference the enclosing block.
func (c *Context) WithOuterRow(row RowContext) *Context {
	nc := *c
	nc.outer = make([]RowContext, len(c.outer)+1)
	copy(nc.outer, c.outer)
	nc.outer[len(c.outer)] = row
	nc.eval = newEvalState()
	return &nc
}

// OuterRow returns the row of the query block the given number of levels
// above the one being evaluated.
func (c *Context) OuterRow(level int) (RowContext, bool) {
	i := len(c.outer) - level
	if level <= 0 || i < 0 || c.outer[i] == nil {
		return nil, false
	}
	return c.outer[i], true
}

// CachedResult returns the result stored for the cache point with the
// given id during this evaluation.
func (c *Context) CachedResult(id uint64) (*RowSet, bool) {
	rs, ok := c.eval.results[id]
	return rs, ok
}

// CacheResult stores the result of the cache point with the given id.
func (c *Context) CacheResult(id uint64, rs *RowSet) {
	c.eval.results[id] = rs
}

// MarkedResult returns the result tagged with the given name.
func (c *Context) MarkedResult(name string) (*RowSet, bool) {
	rs, ok := c.eval.marked[name]
	return rs, ok
}

// MarkResult tags a result with the given name.
func (c *Context) MarkResult(name string, rs *RowSet) {
	c.eval.marked[name] = rs
}
