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

package sqle_test

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	sqle "gopkg.in/src-d/go-queryplan.v0"
	"gopkg.in/src-d/go-queryplan.v0/auth"
	"gopkg.in/src-d/go-queryplan.v0/mem"
	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/parse"
)

const fixture = `
current: mydb
databases:
  - name: mydb
    tables:
      - name: mytable
        columns:
          - {name: i, type: int64}
          - {name: s, type: text}
        rows:
          - [1, "first row"]
          - [2, "second row"]
          - [3, "third row"]
      - name: othertable
        columns:
          - {name: s2, type: text}
          - {name: i2, type: int64}
        rows:
          - ["first", 3]
          - ["second", 2]
          - ["third", 1]
`

var queries = []struct {
	query    string
	expected []sql.Row
}{
	{
		"SELECT i FROM mytable;",
		[]sql.Row{{int64(1)}, {int64(2)}, {int64(3)}},
	},
	{
		"SELECT i FROM mytable WHERE i = 2;",
		[]sql.Row{{int64(2)}},
	},
	{
		"SELECT i FROM mytable ORDER BY i DESC;",
		[]sql.Row{{int64(3)}, {int64(2)}, {int64(1)}},
	},
	{
		"SELECT i FROM mytable WHERE s = 'first row' ORDER BY i DESC;",
		[]sql.Row{{int64(1)}},
	},
	{
		"SELECT i FROM mytable WHERE s = 'first row' ORDER BY i DESC LIMIT 1;",
		[]sql.Row{{int64(1)}},
	},
	{
		"SELECT i FROM mytable ORDER BY i LIMIT 1 OFFSET 1;",
		[]sql.Row{{int64(2)}},
	},
	{
		"SELECT i FROM mytable ORDER BY i LIMIT 5 OFFSET 10;",
		nil,
	},
	{
		"SELECT COUNT(*) FROM mytable;",
		[]sql.Row{{int64(3)}},
	},
	{
		"SELECT COUNT(*) FROM mytable LIMIT 1;",
		[]sql.Row{{int64(3)}},
	},
	{
		"SELECT s, i2 FROM mytable, othertable WHERE i = i2 ORDER BY i;",
		[]sql.Row{
			{"first row", int64(1)},
			{"second row", int64(2)},
			{"third row", int64(3)},
		},
	},
	{
		"SELECT s2 FROM othertable WHERE i2 IN (SELECT i FROM mytable WHERE i > 1) ORDER BY s2;",
		[]sql.Row{{"first"}, {"second"}},
	},
	{
		"SELECT i FROM mytable WHERE s LIKE 'th%';",
		[]sql.Row{{int64(3)}},
	},
	{
		"SELECT UPPER(s2) AS u FROM othertable ORDER BY u LIMIT 2;",
		[]sql.Row{{"FIRST"}, {"SECOND"}},
	},
	{
		"SELECT i FROM mytable UNION SELECT i2 FROM othertable ORDER BY 1 DESC LIMIT 2;",
		[]sql.Row{{int64(3)}, {int64(2)}},
	},
	{
		"SELECT i FROM mytable WHERE i BETWEEN 2 AND 3 ORDER BY i;",
		[]sql.Row{{int64(2)}, {int64(3)}},
	},
}

func newEngine(t *testing.T, cfg *sqle.Config) *sqle.Engine {
	t.Helper()

	catalog, err := mem.LoadFixtures(strings.NewReader(fixture))
	require.NoError(t, err)

	e, err := sqle.New(catalog, cfg)
	require.NoError(t, err)
	return e
}

func TestQueries(t *testing.T) {
	e := newEngine(t, nil)

	for _, tt := range queries {
		t.Run(tt.query, func(t *testing.T) {
			require := require.New(t)

			result, err := e.Query(context.TODO(), "root", tt.query)
			require.NoError(err)
			if len(result.Rows) == 0 {
				result.Rows = nil
			}
			require.Equal(tt.expected, result.Rows)
		})
	}
}

func TestQueryColumns(t *testing.T) {
	require := require.New(t)
	e := newEngine(t, nil)

	result, err := e.Query(context.TODO(), "root", "SELECT i AS n, s FROM mytable WHERE i = 1")
	require.NoError(err)
	require.Equal([]sql.Variable{
		{Column: "n"},
		sql.ParseVariable("mytable.s"),
	}, result.Columns)
	require.NotNil(result.Plan)
}

func TestQueryIsRepeatable(t *testing.T) {
	require := require.New(t)
	e := newEngine(t, nil)

	const q = "SELECT i FROM mytable WHERE i > 1 ORDER BY i LIMIT 1"
	for i := 0; i < 3; i++ {
		result, err := e.Query(context.TODO(), "root", q)
		require.NoError(err)
		require.Equal([]sql.Row{{int64(2)}}, result.Rows)
	}
}

func TestQueryErrors(t *testing.T) {
	require := require.New(t)
	e := newEngine(t, nil)

	_, err := e.Query(context.TODO(), "root", "SELECT nope FROM mytable")
	require.True(sql.ErrUnresolvedReference.Is(err))

	_, err = e.Query(context.TODO(), "root", "SELECT i FROM nosuchtable")
	require.True(sql.ErrTableNotFound.Is(err))

	_, err = e.Query(context.TODO(), "root", "INSERT INTO mytable VALUES (1)")
	require.True(parse.ErrUnsupportedSyntax.Is(err))
}

func TestCaseInsensitive(t *testing.T) {
	require := require.New(t)
	e := newEngine(t, &sqle.Config{CaseInsensitive: true})

	result, err := e.Query(context.TODO(), "root", "SELECT I FROM MyTable WHERE MYTABLE.i = 3")
	require.NoError(err)
	require.Equal([]sql.Row{{int64(3)}}, result.Rows)
}

func TestExplain(t *testing.T) {
	require := require.New(t)
	e := newEngine(t, nil)

	s, err := e.Explain(context.TODO(), "root", "SELECT i FROM mytable WHERE i > 1")
	require.NoError(err)
	require.Contains(s, "Range(mytable.i: mytable.i > 1)")
	require.Contains(s, "Fetch(mytable)")
}

const users = `
- name: root
  permissions: [read, explain]
- name: reader
  tables: ["mydb.mytable"]
`

func TestAuthorization(t *testing.T) {
	require := require.New(t)

	a, err := auth.NewNative([]byte(users))
	require.NoError(err)
	e := newEngine(t, &sqle.Config{AuthMethod: a})

	_, err = e.Query(context.TODO(), "reader", "SELECT i FROM mytable")
	require.NoError(err)

	_, err = e.Query(context.TODO(), "reader", "SELECT i FROM mytable WHERE i IN (SELECT i2 FROM othertable)")
	require.True(auth.ErrNotAuthorized.Is(err))

	_, err = e.Explain(context.TODO(), "reader", "SELECT i FROM mytable")
	require.True(auth.ErrNotAuthorized.Is(err))

	_, err = e.Explain(context.TODO(), "root", "SELECT s2 FROM othertable")
	require.NoError(err)

	_, err = e.Query(context.TODO(), "nobody", "SELECT i FROM mytable")
	require.True(auth.ErrNotAuthorized.Is(err))
}

func TestConfig(t *testing.T) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "sqle-config")
	require.NoError(err)
	defer os.RemoveAll(dir)

	usersPath := filepath.Join(dir, "users.yaml")
	require.NoError(ioutil.WriteFile(usersPath, []byte(users), 0600))

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(ioutil.WriteFile(cfgPath, []byte(
		"case_insensitive: true\nstatement_cache_size: 8\naudit: true\nauth: "+usersPath+"\n",
	), 0600))

	cfg, err := sqle.LoadConfig(cfgPath)
	require.NoError(err)
	require.True(cfg.CaseInsensitive)
	require.Equal(8, cfg.StatementCacheSize)

	e := newEngine(t, cfg)
	_, ok := e.Auth.(*auth.Audit)
	require.True(ok)

	_, err = e.Query(context.TODO(), "root", "SELECT i FROM MYTABLE")
	require.NoError(err)

	_, err = sqle.ParseConfig([]byte("unknown_key: 1\n"))
	require.True(sqle.ErrInvalidConfig.Is(err))

	_, err = sqle.New(nil, &sqle.Config{Auth: filepath.Join(dir, "missing.yaml")})
	require.Error(err)
}
