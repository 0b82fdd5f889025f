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

package bolt

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-queryplan.v0/mem"
	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/parse"
	"gopkg.in/src-d/go-queryplan.v0/sql/planner"
)

func setupStore(t *testing.T) (*Store, func()) {
	t.Helper()

	dir, err := ioutil.TempDir("", "bolt-store")
	require.NoError(t, err)

	s, err := Open(filepath.Join(dir, "tables.db"), "mydb")
	require.NoError(t, err)

	return s, func() {
		require.NoError(t, s.Close())
		require.NoError(t, os.RemoveAll(dir))
	}
}

var testSchema = sql.Schema{
	{Name: "id", Type: sql.Int64},
	{Name: "name", Type: sql.Text, Nullable: true},
}

func TestStoreCreateAndRead(t *testing.T) {
	require := require.New(t)
	s, cleanup := setupStore(t)
	defer cleanup()

	require.NoError(s.CreateTable("mydb", "people", testSchema))
	require.NoError(s.Insert("mydb", "people",
		sql.NewRow(1, "alice"),
		sql.NewRow("2", nil),
	))

	ctx := sql.NewEmptyContext()
	table, err := s.Table(ctx, "mydb", "people")
	require.NoError(err)
	require.Equal("people", table.Name())
	require.Len(table.Schema(), 2)
	require.Equal("people", table.Schema()[0].Source)

	rows, err := table.Rows(ctx)
	require.NoError(err)
	require.Equal([]sql.Row{
		{int64(1), "alice"},
		{int64(2), nil},
	}, rows)

	names, err := s.TableNames("mydb")
	require.NoError(err)
	require.Equal([]string{"people"}, names)

	schemas, err := s.Schemas()
	require.NoError(err)
	require.Equal([]string{"mydb"}, schemas)
}

func TestStoreErrors(t *testing.T) {
	require := require.New(t)
	s, cleanup := setupStore(t)
	defer cleanup()

	require.NoError(s.CreateTable("mydb", "people", testSchema))

	err := s.CreateTable("mydb", "people", testSchema)
	require.True(ErrTableExists.Is(err))

	err = s.Insert("mydb", "people", sql.NewRow(1))
	require.True(sql.ErrUnexpectedRowLength.Is(err))

	err = s.Insert("mydb", "people", sql.NewRow(nil, "bob"))
	require.True(sql.ErrInvalidType.Is(err))

	_, err = s.Table(sql.NewEmptyContext(), "mydb", "nope")
	require.True(sql.ErrTableNotFound.Is(err))

	_, err = s.Table(sql.NewEmptyContext(), "other", "people")
	require.True(sql.ErrDatabaseNotFound.Is(err))

	require.NoError(s.DropTable("mydb", "people"))
	err = s.DropTable("mydb", "people")
	require.True(sql.ErrTableNotFound.Is(err))
}

func TestStoreCaseInsensitive(t *testing.T) {
	require := require.New(t)
	s, cleanup := setupStore(t)
	defer cleanup()

	require.NoError(s.CreateTable("mydb", "People", testSchema))

	_, err := s.Table(sql.NewEmptyContext(), "mydb", "people")
	require.Error(err)

	s.SetCaseInsensitive(true)
	table, err := s.Table(sql.NewEmptyContext(), "MYDB", "people")
	require.NoError(err)
	require.Equal("People", table.Name())
}

func TestStoreClosed(t *testing.T) {
	require := require.New(t)
	s, cleanup := setupStore(t)
	defer cleanup()

	require.NoError(s.Close())
	_, err := s.TableNames("mydb")
	require.Error(err)
}

const fixture = `
current: mydb
databases:
  - name: mydb
    tables:
      - name: emp
        columns:
          - {name: name, type: text}
          - {name: salary, type: int64}
        rows:
          - ["ann", 100]
          - ["bob", 200]
          - ["cid", 50]
`

func TestStoreImportAndPlan(t *testing.T) {
	require := require.New(t)
	s, cleanup := setupStore(t)
	defer cleanup()

	catalog, err := mem.LoadFixtures(strings.NewReader(fixture))
	require.NoError(err)

	ctx := sql.NewContext(context.TODO(), sql.WithCatalog(s))
	require.NoError(s.Import(ctx, catalog))

	stmt, err := parse.Parse(ctx, "SELECT name FROM emp WHERE salary > 60 ORDER BY salary DESC")
	require.NoError(err)

	node, err := planner.New(s, planner.Options{}).Plan(ctx, stmt)
	require.NoError(err)

	rs, err := node.Evaluate(ctx)
	require.NoError(err)
	require.Equal([]sql.Row{{"bob"}, {"ann"}}, rs.Rows)
}
