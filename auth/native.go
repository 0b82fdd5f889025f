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

package auth

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"path"
	"regexp"
	"strings"

	"gopkg.in/yaml.v2"

	"gopkg.in/src-d/go-queryplan.v0/sql"
)

var regNative = regexp.MustCompile(`^\*[0-9A-F]{40}$`)

// nativeUser holds information about credentials and permissions for user.
type nativeUser struct {
	Name            string   `yaml:"name"`
	Password        string   `yaml:"password"`
	YAMLPermissions []string `yaml:"permissions"`
	// Tables are the patterns, matched with path.Match against
	// "schema.table", of the tables the user may read. No pattern means
	// every table.
	Tables      []string   `yaml:"tables"`
	Permissions Permission `yaml:"-"`
}

// Allowed checks if the user has certain permission.
func (u nativeUser) Allowed(p Permission) error {
	if u.Permissions&p == p {
		return nil
	}

	// permissions needed but not granted to the user
	p2 := (^u.Permissions) & p

	return ErrNotAuthorized.Wrap(ErrNoPermission.New(p2), u.Name)
}

func (u nativeUser) canRead(t sql.TableName, current string) bool {
	if len(u.Tables) == 0 {
		return true
	}

	schema := t.Schema
	if schema == "" {
		schema = current
	}
	name := strings.ToLower(schema + "." + t.Name)
	for _, pattern := range u.Tables {
		if ok, err := path.Match(strings.ToLower(pattern), name); err == nil && ok {
			return true
		}
	}
	return false
}

// NativePassword generates a mysql_native_password string.
func NativePassword(password string) string {
	if len(password) == 0 {
		return ""
	}

	// native = sha1(sha1(password))

	hash := sha1.New()
	hash.Write([]byte(password))
	s1 := hash.Sum(nil)

	hash.Reset()
	hash.Write(s1)
	s2 := hash.Sum(nil)

	s := strings.ToUpper(hex.EncodeToString(s2))

	return fmt.Sprintf("*%s", s)
}

// Native holds users authenticated with mysql_native_password hashes.
type Native struct {
	users map[string]nativeUser
}

// NewNativeSingle creates a NativeAuth with a single user with given
// permissions over every table.
func NewNativeSingle(name, password string, perm Permission) *Native {
	users := make(map[string]nativeUser)
	users[name] = nativeUser{
		Name:        name,
		Password:    NativePassword(password),
		Permissions: perm,
	}

	return &Native{users}
}

// NewNativeFile creates a NativeAuth and loads users from a YAML file.
//
//	- name: ann
//	  password: secret
//	  permissions: [read]
//	  tables: ["mydb.*"]
func NewNativeFile(file string) (*Native, error) {
	raw, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return NewNative(raw)
}

// NewNative creates a NativeAuth from the YAML description of its users.
func NewNative(raw []byte) (*Native, error) {
	var data []nativeUser
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, err
	}

	users := make(map[string]nativeUser)
	for _, u := range data {
		_, ok := users[u.Name]
		if ok {
			return nil, ErrDuplicateUser.New(u.Name)
		}

		if !regNative.MatchString(u.Password) {
			u.Password = NativePassword(u.Password)
		}

		if len(u.YAMLPermissions) == 0 {
			u.Permissions = DefaultPermissions
		}

		for _, p := range u.YAMLPermissions {
			perm, ok := PermissionNames[strings.ToLower(p)]
			if !ok {
				return nil, ErrUnknownPermission.New(p)
			}

			u.Permissions |= perm
		}

		for _, pattern := range u.Tables {
			if _, err := path.Match(pattern, ""); err != nil {
				return nil, fmt.Errorf("invalid table pattern %q for user %s: %s", pattern, u.Name, err)
			}
		}

		users[u.Name] = u
	}

	return &Native{users}, nil
}

// Authenticate implements Auth interface.
func (s *Native) Authenticate(name, password string) error {
	u, ok := s.users[name]
	if !ok || u.Password != NativePassword(password) {
		return ErrInvalidCredentials.New(name)
	}
	return nil
}

// Allowed implements Auth interface.
func (s *Native) Allowed(ctx *sql.Context, permission Permission, tables []sql.TableName) error {
	u, ok := s.users[ctx.User()]
	if !ok {
		return ErrNotAuthorized.Wrap(ErrNoPermission.New(permission), ctx.User())
	}

	if err := u.Allowed(permission); err != nil {
		return err
	}

	var current string
	if c := ctx.Catalog(); c != nil {
		current = c.CurrentSchema()
	}
	for _, t := range tables {
		if !u.canRead(t, current) {
			return ErrNotAuthorized.New(fmt.Sprintf("user %s can not read table %s", u.Name, t))
		}
	}
	return nil
}
