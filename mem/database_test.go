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

package mem

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/src-d/go-queryplan.v0/sql"
)

func TestDatabase_Name(t *testing.T) {
	require := require.New(t)
	db := NewDatabase("test")
	require.Equal("test", db.Name())
}

func TestDatabase_AddTable(t *testing.T) {
	require := require.New(t)
	db := NewDatabase("test")
	tables := db.Tables()
	require.Equal(0, len(tables))
	db.AddTable("test_table", NewTable("test_table", sql.Schema{}))
	tables = db.Tables()
	require.Equal(1, len(tables))
	tt, ok := tables["test_table"]
	require.True(ok)
	require.NotNil(tt)
}

func TestCatalogTable(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	db := NewDatabase("mydb")
	db.AddTable("Foo", NewTable("Foo", sql.Schema{}))
	catalog := NewCatalog(db, NewDatabase("other"))

	require.Equal("mydb", catalog.CurrentSchema())
	require.Equal([]string{"mydb", "other"}, catalog.DatabaseNames())

	table, err := catalog.Table(ctx, "mydb", "Foo")
	require.NoError(err)
	require.Equal("Foo", table.Name())

	_, err = catalog.Table(ctx, "mydb", "foo")
	require.True(sql.ErrTableNotFound.Is(err))

	_, err = catalog.Table(ctx, "nope", "Foo")
	require.True(sql.ErrDatabaseNotFound.Is(err))

	catalog.SetCaseInsensitive(true)
	_, err = catalog.Table(ctx, "MYDB", "foo")
	require.NoError(err)
}

func TestLoadFixtures(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	catalog, err := LoadFixturesFile("testdata/fixtures.yml")
	require.NoError(err)
	require.Equal("mydb", catalog.CurrentSchema())

	table, err := catalog.Table(ctx, "mydb", "mytable")
	require.NoError(err)

	rows, err := table.Rows(ctx)
	require.NoError(err)
	require.Equal([]sql.Row{
		sql.NewRow(int64(1), "first row"),
		sql.NewRow(int64(2), "second row"),
		sql.NewRow(int64(3), nil),
	}, rows)

	table, err = catalog.Table(ctx, "other", "scores")
	require.NoError(err)
	require.Equal(sql.Float64, table.Schema()[1].Type)
}

func TestLoadFixturesErrors(t *testing.T) {
	require := require.New(t)

	_, err := LoadFixtures(strings.NewReader("databases: [{tables: []}]"))
	require.True(ErrInvalidFixture.Is(err))

	_, err = LoadFixtures(strings.NewReader(`
databases:
  - name: db
    tables:
      - name: t
        columns: [{name: a, type: blob}]
`))
	require.True(ErrInvalidFixture.Is(err))

	_, err = LoadFixtures(strings.NewReader("current: missing\ndatabases: [{name: db}]"))
	require.True(sql.ErrDatabaseNotFound.Is(err))
}
