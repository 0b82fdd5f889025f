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
	"strings"

	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/plan"
)

// TableSource is an item of a FROM clause as seen by name resolution.
type TableSource interface {
	// UniqueName is the name the source is known by within its query block.
	UniqueName() string
	// MatchesReference reports whether a reference qualified with the given
	// schema and table names may point to this source. Empty parts match
	// anything.
	MatchesReference(schema, table string) bool
	// ResolveColumnCount returns how many columns of the source match the
	// reference.
	ResolveColumnCount(v sql.Variable) int
	// ResolveColumn returns the fully qualified column the reference points
	// to. It must only be called when ResolveColumnCount returned 1.
	ResolveColumn(v sql.Variable) sql.Variable
	// Columns returns every column of the source in order.
	Columns() []sql.Variable
	// Plan returns the plan producing the rows of the source.
	Plan() sql.Node
}

// DirectSource is a physical table of the catalog.
type DirectSource struct {
	caseInsensitive bool
	table           sql.TableName
	given           sql.TableName
	columns         []sql.Variable
}

var _ TableSource = (*DirectSource)(nil)

// NewDirectSource creates a source for the given table. The given name is
// the alias of the table, or the table name when it has none.
func NewDirectSource(table, given sql.TableName, schema sql.Schema, caseInsensitive bool) *DirectSource {
	columns := make([]sql.Variable, len(schema))
	for i, c := range schema {
		columns[i] = sql.NewVariable(given, c.Name)
	}
	return &DirectSource{caseInsensitive, table, given, columns}
}

// Table returns the name of the physical table.
func (s *DirectSource) Table() sql.TableName { return s.table }

// UniqueName implements the TableSource interface.
func (s *DirectSource) UniqueName() string { return s.given.String() }

// MatchesReference implements the TableSource interface.
func (s *DirectSource) MatchesReference(schema, table string) bool {
	if schema != "" && !equalNames(schema, s.given.Schema, s.caseInsensitive) {
		return false
	}
	return table == "" || equalNames(table, s.given.Name, s.caseInsensitive)
}

// ResolveColumnCount implements the TableSource interface.
func (s *DirectSource) ResolveColumnCount(v sql.Variable) int {
	if v.Catalog != "" || !s.MatchesReference(v.Schema, v.Table) {
		return 0
	}

	var count int
	for _, c := range s.columns {
		if equalNames(v.Column, c.Column, s.caseInsensitive) {
			count++
		}
	}
	return count
}

// ResolveColumn implements the TableSource interface.
func (s *DirectSource) ResolveColumn(v sql.Variable) sql.Variable {
	for _, c := range s.columns {
		if equalNames(v.Column, c.Column, s.caseInsensitive) {
			return c
		}
	}
	return sql.Variable{}
}

// Columns implements the TableSource interface.
func (s *DirectSource) Columns() []sql.Variable { return s.columns }

// Plan implements the TableSource interface.
func (s *DirectSource) Plan() sql.Node {
	return plan.NewFetch(s.table, s.given)
}

func (s *DirectSource) String() string {
	if s.table == s.given {
		return s.table.String()
	}
	return fmt.Sprintf("%s AS %s", s.table, s.given)
}

// SubquerySource is a derived table of the FROM clause. Its columns are
// the columns its query block exposes, requalified with its alias.
type SubquerySource struct {
	caseInsensitive bool
	name            string
	alias           string
	exposed         []sql.Variable
	columns         []sql.Variable
	plan            sql.Node
}

var _ TableSource = (*SubquerySource)(nil)

// NewSubquerySource creates a source for a derived table. The scope is the
// scope of the derived table's query block and child its plan. Unaliased
// derived tables are named after their position in the FROM clause.
func NewSubquerySource(scope *Scope, child sql.Node, alias string, position int) *SubquerySource {
	exposed := scope.ResolvedVariables()
	columns := make([]sql.Variable, len(exposed))
	for i, v := range exposed {
		if alias == "" {
			columns[i] = v
		} else {
			columns[i] = sql.Variable{Table: alias, Column: v.Column}
		}
	}

	name := alias
	if name == "" {
		name = fmt.Sprintf("#SUBQUERY-%d", position)
	}

	return &SubquerySource{
		caseInsensitive: scope.caseInsensitive,
		name:            name,
		alias:           alias,
		exposed:         exposed,
		columns:         columns,
		plan:            child,
	}
}

// UniqueName implements the TableSource interface.
func (s *SubquerySource) UniqueName() string { return s.name }

// MatchesReference implements the TableSource interface.
func (s *SubquerySource) MatchesReference(schema, table string) bool {
	if schema != "" {
		return false
	}
	return table == "" || (s.alias != "" && equalNames(table, s.alias, s.caseInsensitive))
}

// ResolveColumnCount implements the TableSource interface.
func (s *SubquerySource) ResolveColumnCount(v sql.Variable) int {
	if v.Catalog != "" || v.Schema != "" {
		return 0
	}

	var count int
	for _, c := range s.columns {
		if v.Matches(c, s.caseInsensitive) {
			count++
		}
	}
	return count
}

// ResolveColumn implements the TableSource interface.
func (s *SubquerySource) ResolveColumn(v sql.Variable) sql.Variable {
	for _, c := range s.columns {
		if v.Matches(c, s.caseInsensitive) {
			return c
		}
	}
	return sql.Variable{}
}

// Columns implements the TableSource interface.
func (s *SubquerySource) Columns() []sql.Variable { return s.columns }

// Plan implements the TableSource interface. The rows of the derived table
// become base rows named after the source.
func (s *SubquerySource) Plan() sql.Node {
	return plan.NewSubset(s.exposed, s.columns, s.name, s.plan)
}

func (s *SubquerySource) String() string {
	return "derived table " + s.name
}

func equalNames(a, b string, caseInsensitive bool) bool {
	if caseInsensitive {
		return strings.EqualFold(a, b)
	}
	return a == b
}
