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

package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixture = `
current: mydb
databases:
  - name: mydb
    tables:
      - name: emp
        columns:
          - {name: name, type: text}
          - {name: salary, type: int64, nullable: true}
        rows:
          - ["ann", 100]
          - ["bob", 200]
          - ["cid", null]
`

func setup(t *testing.T) (string, func()) {
	t.Helper()

	dir, err := ioutil.TempDir("", "sqlplan")
	require.NoError(t, err)
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "fixtures.yaml"), []byte(fixture), 0600))
	return dir, func() { os.RemoveAll(dir) }
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestQueryCommand(t *testing.T) {
	require := require.New(t)
	dir, cleanup := setup(t)
	defer cleanup()

	out, _, err := execute(t, "",
		"query", "--fixtures", filepath.Join(dir, "fixtures.yaml"),
		"SELECT name, salary FROM emp ORDER BY name",
	)
	require.NoError(err)
	require.Contains(out, "emp.name")
	require.Contains(out, "bob")
	require.Contains(out, "NULL")
	require.Contains(out, "_3 rows_")
}

func TestQueryCommandStdin(t *testing.T) {
	require := require.New(t)
	dir, cleanup := setup(t)
	defer cleanup()

	out, errOut, err := execute(t, "SELECT COUNT(*) FROM emp\n\nSELECT nope FROM emp\n",
		"query", "--fixtures", filepath.Join(dir, "fixtures.yaml"),
	)
	require.NoError(err)
	require.Contains(out, "_1 rows_")
	require.Contains(errOut, "nope")
}

func TestExplainCommand(t *testing.T) {
	require := require.New(t)
	dir, cleanup := setup(t)
	defer cleanup()

	out, _, err := execute(t, "",
		"explain", "--fixtures", filepath.Join(dir, "fixtures.yaml"),
		"SELECT name FROM emp WHERE salary > 150",
	)
	require.NoError(err)
	require.Contains(out, "Range(emp.salary: emp.salary > 150)")
	require.Contains(out, "Fetch(emp)")
}

func TestImportAndQueryStorage(t *testing.T) {
	require := require.New(t)
	dir, cleanup := setup(t)
	defer cleanup()

	storage := filepath.Join(dir, "tables.db")
	out, _, err := execute(t, "",
		"import", "--fixtures", filepath.Join(dir, "fixtures.yaml"), "--storage", storage,
	)
	require.NoError(err)
	require.Equal("mydb: emp\n", out)

	out, _, err = execute(t, "", "query", "--storage", storage, "SELECT name FROM emp WHERE salary >= 200")
	require.NoError(err)
	require.Contains(out, "bob")
	require.NotContains(out, "ann")
}

func TestCommandErrors(t *testing.T) {
	require := require.New(t)
	dir, cleanup := setup(t)
	defer cleanup()

	_, _, err := execute(t, "", "query", "SELECT 1")
	require.Error(err)

	_, _, err = execute(t, "", "import", "--fixtures", filepath.Join(dir, "fixtures.yaml"))
	require.Error(err)

	users := filepath.Join(dir, "users.yaml")
	require.NoError(ioutil.WriteFile(users, []byte("- name: ann\n  password: secret\n"), 0600))
	config := filepath.Join(dir, "config.yaml")
	require.NoError(ioutil.WriteFile(config, []byte("auth: "+users+"\n"), 0600))

	_, _, err = execute(t, "",
		"query", "--config", config, "--fixtures", filepath.Join(dir, "fixtures.yaml"),
		"-u", "ann", "-p", "wrong", "SELECT name FROM emp",
	)
	require.Error(err)

	out, _, err := execute(t, "",
		"query", "--config", config, "--fixtures", filepath.Join(dir, "fixtures.yaml"),
		"-u", "ann", "-p", "secret", "SELECT name FROM emp",
	)
	require.NoError(err)
	require.Contains(out, "ann")
}
