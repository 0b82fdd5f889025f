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
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/expression"
)

func directSource(name string, columns ...string) *DirectSource {
	schema := make(sql.Schema, len(columns))
	for i, c := range columns {
		schema[i] = &sql.Column{Name: c, Type: sql.Int64, Nullable: true}
	}
	n := sql.NewTableName("", name)
	return NewDirectSource(n, n, schema, false)
}

func TestScopeResolveReference(t *testing.T) {
	require := require.New(t)

	s := NewScope(nil, false)
	require.NoError(s.AddTable(directSource("a", "id", "x")))
	require.NoError(s.AddTable(directSource("b", "id", "y")))

	v, ok, err := s.ResolveReference(sql.ParseVariable("x"))
	require.NoError(err)
	require.True(ok)
	require.Equal(sql.ParseVariable("a.x"), v)

	v, ok, err = s.ResolveReference(sql.ParseVariable("a.id"))
	require.NoError(err)
	require.True(ok)
	require.Equal(sql.ParseVariable("a.id"), v)

	_, _, err = s.ResolveReference(sql.ParseVariable("id"))
	require.Error(err)
	require.True(sql.ErrAmbiguousReference.Is(err))

	_, ok, err = s.ResolveReference(sql.ParseVariable("z"))
	require.NoError(err)
	require.False(ok)

	err = s.AddTable(directSource("a", "k"))
	require.True(ErrDuplicateTableSource.Is(err))
}

func TestScopeAliasClashesWithDerivedColumn(t *testing.T) {
	require := require.New(t)

	inner := NewScope(nil, false)
	inner.ExposeVariable(sql.Variable{Column: "c"})

	s := NewScope(nil, false)
	require.NoError(s.AddTable(NewSubquerySource(inner, nil, "", 1)))

	v, ok, err := s.ResolveReference(sql.ParseVariable("c"))
	require.NoError(err)
	require.True(ok)
	require.Equal(sql.Variable{Column: "c"}, v)

	s.AddFunctionRef("c", expression.NewLiteral(int64(1), sql.Int64))
	_, _, err = s.ResolveReference(sql.ParseVariable("c"))
	require.True(sql.ErrAmbiguousReference.Is(err))
}

func TestScopeAliases(t *testing.T) {
	require := require.New(t)

	s := NewScope(nil, false)
	require.NoError(s.AddTable(directSource("a", "id", "x")))

	double := expression.NewMult(
		expression.NewVariable(sql.ParseVariable("a.x")),
		expression.NewLiteral(int64(2), sql.Int64),
	)
	s.AddFunctionRef("n", double)

	require.True(s.IsAlias(sql.ParseVariable("n")))
	require.False(s.IsAlias(sql.ParseVariable("a.n")))
	require.Equal(double, s.DereferenceAssignment(sql.ParseVariable("n")))

	v, ok, err := s.ResolveReference(sql.ParseVariable("n"))
	require.NoError(err)
	require.True(ok)
	require.Equal(sql.Variable{Column: "n"}, v)

	_, ok, err = s.ResolveColumnReference(sql.ParseVariable("n"))
	require.NoError(err)
	require.False(ok)

	s.AddFunctionRef("x", double)
	_, _, err = s.ResolveReference(sql.ParseVariable("x"))
	require.True(sql.ErrAmbiguousReference.Is(err))
}

func TestScopeGlobalResolveReference(t *testing.T) {
	require := require.New(t)

	s0 := NewScope(nil, false)
	require.NoError(s0.AddTable(directSource("a", "id", "x")))
	s1 := NewScope(s0, false)
	require.NoError(s1.AddTable(directSource("b", "id")))
	s2 := NewScope(s1, false)
	require.NoError(s2.AddTable(directSource("c", "id")))
	s3 := NewScope(s2, false)
	require.NoError(s3.AddTable(directSource("d", "id")))

	e, err := s3.QualifyVariable(sql.ParseVariable("x"))
	require.NoError(err)
	cv, ok := e.(*expression.CorrelatedVariable)
	require.True(ok)
	require.Equal(3, cv.Level())
	require.Equal(sql.ParseVariable("a.x"), cv.Name())

	e, err = s3.QualifyVariable(sql.ParseVariable("b.id"))
	require.NoError(err)
	cv, ok = e.(*expression.CorrelatedVariable)
	require.True(ok)
	require.Equal(2, cv.Level())

	e, err = s3.QualifyVariable(sql.ParseVariable("id"))
	require.NoError(err)
	require.Equal(expression.NewVariable(sql.ParseVariable("d.id")), e)

	_, err = s3.QualifyVariable(sql.ParseVariable("nope"))
	require.True(sql.ErrUnresolvedReference.Is(err))
}

func TestScopeAliasesOnlyInOwnBlock(t *testing.T) {
	require := require.New(t)

	outer := NewScope(nil, false)
	require.NoError(outer.AddTable(directSource("a", "id")))
	outer.AddFunctionRef("n", expression.NewVariable(sql.ParseVariable("a.id")))

	inner := NewScope(outer, false)
	require.NoError(inner.AddTable(directSource("b", "y")))

	_, err := inner.QualifyVariable(sql.ParseVariable("n"))
	require.True(sql.ErrUnresolvedReference.Is(err))
}

func TestScopeExposedColumns(t *testing.T) {
	require := require.New(t)

	s := NewScope(nil, false)
	require.NoError(s.AddTable(directSource("a", "id", "x")))
	require.NoError(s.AddTable(directSource("b", "y")))

	require.NoError(s.ExposeAllColumnsFromSource(sql.NewTableName("", "b")))
	s.ExposeVariable(sql.Variable{Column: "total"})
	require.Equal([]sql.Variable{
		sql.ParseVariable("b.y"),
		{Column: "total"},
	}, s.ResolvedVariables())

	err := s.ExposeAllColumnsFromSource(sql.NewTableName("", "c"))
	require.True(sql.ErrTableNotFound.Is(err))
}

func TestScopeCaseInsensitive(t *testing.T) {
	require := require.New(t)

	n := sql.NewTableName("", "Emp")
	schema := sql.Schema{&sql.Column{Name: "Salary", Type: sql.Int64}}
	s := NewScope(nil, true)
	require.NoError(s.AddTable(NewDirectSource(n, n, schema, true)))

	v, ok, err := s.ResolveReference(sql.ParseVariable("emp.SALARY"))
	require.NoError(err)
	require.True(ok)
	require.Equal(sql.ParseVariable("Emp.Salary"), v)
}
