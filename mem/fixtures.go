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
	"io"
	"io/ioutil"
	"os"

	"gopkg.in/src-d/go-errors.v1"
	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/yaml.v2"
)

// ErrInvalidFixture is returned when a fixture file cannot be loaded.
var ErrInvalidFixture = errors.NewKind("invalid fixture: %s")

// Fixture is the YAML description of a set of databases and their rows.
//
//	current: mydb
//	databases:
//	  - name: mydb
//	    tables:
//	      - name: people
//	        columns:
//	          - {name: id, type: int64}
//	          - {name: name, type: text, nullable: true}
//	        rows:
//	          - [1, "alice"]
type Fixture struct {
	Current   string            `yaml:"current"`
	Databases []DatabaseFixture `yaml:"databases"`
}

// DatabaseFixture describes one database of a fixture.
type DatabaseFixture struct {
	Name   string         `yaml:"name"`
	Tables []TableFixture `yaml:"tables"`
}

// TableFixture describes one table of a fixture.
type TableFixture struct {
	Name    string          `yaml:"name"`
	Columns []ColumnFixture `yaml:"columns"`
	Rows    [][]interface{} `yaml:"rows"`
}

// ColumnFixture describes one column of a fixture table.
type ColumnFixture struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
}

// LoadFixtures reads a YAML fixture and builds a catalog out of it.
func LoadFixtures(r io.Reader) (*Catalog, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, ErrInvalidFixture.Wrap(err, err.Error())
	}

	return f.Catalog()
}

// LoadFixturesFile reads the YAML fixture at the given path.
func LoadFixturesFile(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadFixtures(file)
}

// Catalog builds the catalog described by the fixture.
func (f *Fixture) Catalog() (*Catalog, error) {
	catalog := NewCatalog()
	for _, dbf := range f.Databases {
		if dbf.Name == "" {
			return nil, ErrInvalidFixture.New("database without name")
		}

		db := NewDatabase(dbf.Name)
		for _, tf := range dbf.Tables {
			table, err := tf.table()
			if err != nil {
				return nil, err
			}
			db.AddTable(tf.Name, table)
		}
		catalog.AddDatabase(db)
	}

	if f.Current != "" {
		if _, err := catalog.Database(f.Current); err != nil {
			return nil, err
		}
		catalog.SetCurrentSchema(f.Current)
	}

	return catalog, nil
}

func (tf TableFixture) table() (*Table, error) {
	if tf.Name == "" {
		return nil, ErrInvalidFixture.New("table without name")
	}

	schema := make(sql.Schema, len(tf.Columns))
	for i, cf := range tf.Columns {
		typ, err := sql.ParseType(cf.Type)
		if err != nil {
			return nil, ErrInvalidFixture.Wrap(err, "column "+cf.Name)
		}
		schema[i] = &sql.Column{Name: cf.Name, Type: typ, Nullable: cf.Nullable, Source: tf.Name}
	}

	table := NewTable(tf.Name, schema)
	for _, row := range tf.Rows {
		if err := table.Insert(row...); err != nil {
			return nil, err
		}
	}
	return table, nil
}
