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

// Package bolt keeps catalog tables in a bolt database file.
//
// Every schema is a top level bucket and every table a bucket nested in
// it. A table bucket holds the gob encoded column definitions under the
// "schema" key and the rows, gob encoded and keyed by insertion sequence,
// in the nested "rows" bucket.
package bolt

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"sort"
	"strings"
	"sync"

	boltdb "github.com/boltdb/bolt"
	"github.com/sirupsen/logrus"
	"gopkg.in/src-d/go-errors.v1"

	"gopkg.in/src-d/go-queryplan.v0/mem"
	"gopkg.in/src-d/go-queryplan.v0/sql"
)

var (
	// ErrTableExists is returned when a table is created twice.
	ErrTableExists = errors.NewKind("table %s already exists")

	// ErrCorruptTable is returned when the stored data of a table can not
	// be decoded.
	ErrCorruptTable = errors.NewKind("corrupt table %s: %s")
)

var (
	schemaKey  = []byte("schema")
	rowsBucket = []byte("rows")
)

type columnDef struct {
	Name     string
	Type     sql.Type
	Nullable bool
}

// Store is a catalog backed by a bolt database.
type Store struct {
	mu              sync.RWMutex
	db              *boltdb.DB
	current         string
	caseInsensitive bool
}

var _ sql.Catalog = (*Store)(nil)

// Open opens, creating it if needed, the bolt database at path. The
// current schema is the one unqualified table names refer to.
func Open(path, current string) (*Store, error) {
	db, err := boltdb.Open(path, 0640, nil)
	if err != nil {
		return nil, err
	}

	logrus.WithField("path", path).Debug("opened table store")
	return &Store{db: db, current: current}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// SetCaseInsensitive makes table lookups ignore case.
func (s *Store) SetCaseInsensitive(ci bool) {
	s.mu.Lock()
	s.caseInsensitive = ci
	s.mu.Unlock()
}

// SetCurrentSchema changes the schema unqualified names refer to.
func (s *Store) SetCurrentSchema(name string) {
	s.mu.Lock()
	s.current = name
	s.mu.Unlock()
}

// CurrentSchema implements the sql.Catalog interface.
func (s *Store) CurrentSchema() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// CreateTable adds an empty table to the given schema.
func (s *Store) CreateTable(schema, name string, columns sql.Schema) error {
	defs := make([]columnDef, len(columns))
	for i, c := range columns {
		defs[i] = columnDef{Name: c.Name, Type: c.Type, Nullable: c.Nullable}
	}

	data, err := encode(defs)
	if err != nil {
		return err
	}

	return s.update(func(tx *boltdb.Tx) error {
		sb, err := tx.CreateBucketIfNotExists([]byte(schema))
		if err != nil {
			return err
		}

		if sb.Bucket([]byte(name)) != nil {
			return ErrTableExists.New(sql.NewTableName(schema, name))
		}

		tb, err := sb.CreateBucket([]byte(name))
		if err != nil {
			return err
		}
		if _, err := tb.CreateBucket(rowsBucket); err != nil {
			return err
		}
		return tb.Put(schemaKey, data)
	})
}

// DropTable removes a table and its rows.
func (s *Store) DropTable(schema, name string) error {
	return s.update(func(tx *boltdb.Tx) error {
		sb := tx.Bucket([]byte(schema))
		if sb == nil || sb.Bucket([]byte(name)) == nil {
			return sql.ErrTableNotFound.New(sql.NewTableName(schema, name).String())
		}
		return sb.DeleteBucket([]byte(name))
	})
}

// Insert appends rows to a table. Values are converted to the types of the
// columns.
func (s *Store) Insert(schema, name string, rows ...sql.Row) error {
	table, err := s.table(schema, name)
	if err != nil {
		return err
	}

	return s.update(func(tx *boltdb.Tx) error {
		rb := tx.Bucket([]byte(table.schemaName)).Bucket([]byte(table.name)).Bucket(rowsBucket)
		for _, r := range rows {
			converted, err := table.convert(r)
			if err != nil {
				return err
			}

			data, err := encode(converted)
			if err != nil {
				return err
			}

			seq, err := rb.NextSequence()
			if err != nil {
				return err
			}
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, seq)
			if err := rb.Put(key, data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Schemas returns the names of the stored schemas, sorted.
func (s *Store) Schemas() ([]string, error) {
	var names []string
	err := s.view(func(tx *boltdb.Tx) error {
		return tx.ForEach(func(name []byte, _ *boltdb.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	return names, err
}

// TableNames returns the names of the tables of a schema, sorted.
func (s *Store) TableNames(schema string) ([]string, error) {
	var names []string
	err := s.view(func(tx *boltdb.Tx) error {
		sb := tx.Bucket([]byte(schema))
		if sb == nil {
			return sql.ErrDatabaseNotFound.New(schema)
		}
		return sb.ForEach(func(k, v []byte) error {
			if v == nil {
				names = append(names, string(k))
			}
			return nil
		})
	})
	sort.Strings(names)
	return names, err
}

// Import copies every table of an in-memory catalog into the store.
func (s *Store) Import(ctx *sql.Context, catalog *mem.Catalog) error {
	for _, dbName := range catalog.DatabaseNames() {
		db, err := catalog.Database(dbName)
		if err != nil {
			return err
		}

		for name, t := range db.Tables() {
			if err := s.CreateTable(dbName, name, t.Schema()); err != nil {
				return err
			}

			rows, err := t.Rows(ctx)
			if err != nil {
				return err
			}
			if err := s.Insert(dbName, name, rows...); err != nil {
				return err
			}

			logrus.WithFields(logrus.Fields{
				"table": sql.NewTableName(dbName, name).String(),
				"rows":  len(rows),
			}).Debug("imported table")
		}
	}
	return nil
}

// Table implements the sql.Catalog interface.
func (s *Store) Table(_ *sql.Context, schema, name string) (sql.Table, error) {
	return s.table(schema, name)
}

func (s *Store) table(schema, name string) (*Table, error) {
	s.mu.RLock()
	ci := s.caseInsensitive
	s.mu.RUnlock()

	var table *Table
	err := s.view(func(tx *boltdb.Tx) error {
		schemaName, sb := findBucket(tx.Cursor(), schema, ci)
		if sb == nil {
			return sql.ErrDatabaseNotFound.New(schema)
		}
		tableName, tb := findBucket(sb.Cursor(), name, ci)
		if tb == nil {
			return sql.ErrTableNotFound.New(sql.NewTableName(schema, name).String())
		}

		var defs []columnDef
		if err := decode(tb.Get(schemaKey), &defs); err != nil {
			return ErrCorruptTable.New(tableName, err)
		}

		columns := make(sql.Schema, len(defs))
		for i, d := range defs {
			columns[i] = &sql.Column{Name: d.Name, Type: d.Type, Nullable: d.Nullable, Source: tableName}
		}
		table = &Table{store: s, schemaName: schemaName, name: tableName, schema: columns}
		return nil
	})
	return table, err
}

func (s *Store) view(fn func(*boltdb.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return boltdb.ErrDatabaseNotOpen
	}
	return s.db.View(fn)
}

func (s *Store) update(fn func(*boltdb.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return boltdb.ErrDatabaseNotOpen
	}
	return s.db.Update(fn)
}

// findBucket looks up a nested bucket by name through a cursor of its
// parent, which is either a transaction or a bucket.
func findBucket(c *boltdb.Cursor, name string, caseInsensitive bool) (string, *boltdb.Bucket) {
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if v != nil {
			continue
		}
		if string(k) == name || (caseInsensitive && strings.EqualFold(string(k), name)) {
			return string(k), c.Bucket().Bucket(k)
		}
	}
	return "", nil
}

func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
