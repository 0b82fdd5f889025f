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
	"sort"
	"strings"
	"sync"

	"gopkg.in/src-d/go-errors.v1"
	"gopkg.in/src-d/go-queryplan.v0/sql"
)

// ErrNullNotAllowed is returned when a NULL value is inserted in a column
// that is not nullable.
var ErrNullNotAllowed = errors.NewKind("column %s of table %s cannot be NULL")

// Database is an in-memory database.
type Database struct {
	name   string
	tables map[string]*Table
}

// NewDatabase creates a new database with the given name.
func NewDatabase(name string) *Database {
	return &Database{
		name:   name,
		tables: map[string]*Table{},
	}
}

// Name returns the database name.
func (d *Database) Name() string {
	return d.name
}

// Tables returns all tables in the database.
func (d *Database) Tables() map[string]*Table {
	return d.tables
}

// AddTable adds a new table to the database.
func (d *Database) AddTable(name string, t *Table) {
	d.tables[name] = t
}

// Catalog is a set of in-memory databases. Each database is a schema table
// names can be qualified with.
type Catalog struct {
	mu              sync.RWMutex
	current         string
	databases       map[string]*Database
	caseInsensitive bool
}

var _ sql.Catalog = (*Catalog)(nil)

// NewCatalog creates a catalog holding the given databases. The first one
// is the current schema.
func NewCatalog(dbs ...*Database) *Catalog {
	c := &Catalog{databases: make(map[string]*Database)}
	for _, db := range dbs {
		c.AddDatabase(db)
	}
	return c
}

// SetCaseInsensitive makes table lookups ignore case.
func (c *Catalog) SetCaseInsensitive(ci bool) {
	c.mu.Lock()
	c.caseInsensitive = ci
	c.mu.Unlock()
}

// AddDatabase adds a database to the catalog.
func (c *Catalog) AddDatabase(db *Database) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == "" {
		c.current = db.Name()
	}
	c.databases[db.Name()] = db
}

// SetCurrentSchema changes the database unqualified names refer to.
func (c *Catalog) SetCurrentSchema(name string) {
	c.mu.Lock()
	c.current = name
	c.mu.Unlock()
}

// CurrentSchema implements the sql.Catalog interface.
func (c *Catalog) CurrentSchema() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Database returns the database with the given name.
func (c *Catalog) Database(name string) (*Database, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for n, db := range c.databases {
		if n == name || (c.caseInsensitive && strings.EqualFold(n, name)) {
			return db, nil
		}
	}
	return nil, sql.ErrDatabaseNotFound.New(name)
}

// DatabaseNames returns the names of every database, sorted.
func (c *Catalog) DatabaseNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.databases))
	for n := range c.databases {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Table implements the sql.Catalog interface.
func (c *Catalog) Table(_ *sql.Context, schema, name string) (sql.Table, error) {
	db, err := c.Database(schema)
	if err != nil {
		return nil, err
	}

	for n, t := range db.Tables() {
		if n == name || (c.caseInsensitive && strings.EqualFold(n, name)) {
			return t, nil
		}
	}
	return nil, sql.ErrTableNotFound.New(sql.NewTableName(schema, name).String())
}
