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
	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/expression"
)

// Scope holds the names visible from a query block: the sources of its
// FROM clause, the aliases of its select list and, through its parent, the
// names of the enclosing blocks.
type Scope struct {
	parent          *Scope
	caseInsensitive bool
	sources         []TableSource
	aliases         []aliasRef
	exposed         []sql.Variable
}

type aliasRef struct {
	name string
	expr sql.Expression
}

// NewScope creates an empty scope nested in parent, which may be nil.
func NewScope(parent *Scope, caseInsensitive bool) *Scope {
	return &Scope{parent: parent, caseInsensitive: caseInsensitive}
}

// Parent returns the scope of the enclosing query block.
func (s *Scope) Parent() *Scope { return s.parent }

// Sources returns the sources of the FROM clause in order.
func (s *Scope) Sources() []TableSource { return s.sources }

// AddTable adds a FROM item to the scope.
func (s *Scope) AddTable(src TableSource) error {
	for _, o := range s.sources {
		if equalNames(o.UniqueName(), src.UniqueName(), s.caseInsensitive) {
			return ErrDuplicateTableSource.New(src.UniqueName())
		}
	}
	s.sources = append(s.sources, src)
	return nil
}

// AddFunctionRef registers a select list alias and the expression it stands for.
func (s *Scope) AddFunctionRef(name string, e sql.Expression) {
	s.aliases = append(s.aliases, aliasRef{name, e})
}

// IsAlias reports whether the variable is a reference to a select list
// alias of this scope.
func (s *Scope) IsAlias(v sql.Variable) bool {
	return s.DereferenceAssignment(v) != nil
}

// DereferenceAssignment returns the expression an alias stands for, or nil
// if the variable is not an alias.
func (s *Scope) DereferenceAssignment(v sql.Variable) sql.Expression {
	if v.IsQualified() || v.Schema != "" || v.Catalog != "" {
		return nil
	}
	for _, a := range s.aliases {
		if equalNames(a.name, v.Column, s.caseInsensitive) {
			return a.expr
		}
	}
	return nil
}

// ExposeVariable adds a column to the ones the block makes visible to an
// enclosing block using it as a derived table.
func (s *Scope) ExposeVariable(v sql.Variable) {
	s.exposed = append(s.exposed, v)
}

// ExposeAllColumns exposes every column of every source.
func (s *Scope) ExposeAllColumns() {
	for _, src := range s.sources {
		s.exposed = append(s.exposed, src.Columns()...)
	}
}

// ExposeAllColumnsFromSource exposes the columns of the named source.
func (s *Scope) ExposeAllColumnsFromSource(name sql.TableName) error {
	src := s.FindTable(name.Schema, name.Name)
	if src == nil {
		return sql.ErrTableNotFound.New(name.String())
	}
	s.exposed = append(s.exposed, src.Columns()...)
	return nil
}

// ResolvedVariables returns the exposed columns in order.
func (s *Scope) ResolvedVariables() []sql.Variable { return s.exposed }

// FindTable returns the first source the name refers to, or nil.
func (s *Scope) FindTable(schema, name string) TableSource {
	for _, src := range s.sources {
		if src.MatchesReference(schema, name) {
			return src
		}
	}
	return nil
}

// ResolveReference resolves a reference against the aliases and the
// sources of this scope only. It returns false if nothing matches.
func (s *Scope) ResolveReference(v sql.Variable) (sql.Variable, bool, error) {
	alias := s.DereferenceAssignment(v) != nil

	c, ok, err := s.ResolveColumnReference(v)
	if err != nil {
		return sql.Variable{}, false, err
	}

	switch {
	case alias && ok:
		return sql.Variable{}, false, sql.ErrAmbiguousReference.New(v.String())
	case alias:
		return sql.Variable{Column: v.Column}, true, nil
	default:
		return c, ok, nil
	}
}

// ResolveColumnReference resolves a reference against the sources of this
// scope, ignoring the aliases.
func (s *Scope) ResolveColumnReference(v sql.Variable) (sql.Variable, bool, error) {
	var (
		count int
		found TableSource
	)
	for _, src := range s.sources {
		if n := src.ResolveColumnCount(v); n > 0 {
			count += n
			found = src
		}
	}

	switch count {
	case 0:
		return sql.Variable{}, false, nil
	case 1:
		return found.ResolveColumn(v), true, nil
	default:
		return sql.Variable{}, false, sql.ErrAmbiguousReference.New(v.String())
	}
}

// GlobalResolveReference resolves a reference in this scope and then in
// the enclosing ones, level being the nesting level of this scope. Names
// found in this scope become variables and names found in an enclosing
// scope become correlated references. Aliases are only considered in this
// scope, and only when withAliases is set.
func (s *Scope) GlobalResolveReference(level int, v sql.Variable, withAliases bool) (sql.Expression, error) {
	for scope, l := s, level; scope != nil; scope, l = scope.parent, l+1 {
		var (
			r   sql.Variable
			ok  bool
			err error
		)
		if l == level && withAliases {
			r, ok, err = scope.ResolveReference(v)
		} else {
			r, ok, err = scope.ResolveColumnReference(v)
		}
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if l == 0 {
			return expression.NewVariable(r), nil
		}
		return expression.NewCorrelatedVariable(r, l), nil
	}
	return nil, sql.ErrUnresolvedReference.New(v.String())
}

// QualifyVariable replaces an unresolved reference with the variable or
// correlated reference it points to.
func (s *Scope) QualifyVariable(v sql.Variable) (sql.Expression, error) {
	return s.GlobalResolveReference(0, v, true)
}

func appendDistinct(list []sql.Variable, v sql.Variable) []sql.Variable {
	for _, o := range list {
		if o == v {
			return list
		}
	}
	return append(list, v)
}
