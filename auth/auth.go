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

// Package auth decides whether a user may run a planned query.
package auth

import (
	"sort"
	"strings"

	"gopkg.in/src-d/go-errors.v1"

	"gopkg.in/src-d/go-queryplan.v0/sql"
)

// Permission holds permissions required by a query or granted to a user.
type Permission int

const (
	// ReadPerm means that it reads.
	ReadPerm Permission = 1 << iota
	// ExplainPerm means that it can see query plans.
	ExplainPerm
)

var (
	// DefaultPermissions are the permissions granted to a user if not defined.
	DefaultPermissions = ReadPerm

	// AllPermissions hold all defined permissions.
	AllPermissions = ReadPerm | ExplainPerm

	// PermissionNames is used to translate from human to machine
	// representations.
	PermissionNames = map[string]Permission{
		"read":    ReadPerm,
		"explain": ExplainPerm,
	}

	// ErrNotAuthorized is returned when the user is not allowed to use a
	// permission or to read a table.
	ErrNotAuthorized = errors.NewKind("not authorized: %s")

	// ErrNoPermission is returned when the user lacks needed permissions.
	ErrNoPermission = errors.NewKind("user does not have permission: %s")

	// ErrUnknownPermission happens when a user permission is not defined.
	ErrUnknownPermission = errors.NewKind("error parsing user file, unknown permission %s")

	// ErrDuplicateUser is returned when a users file names a user twice.
	ErrDuplicateUser = errors.NewKind("duplicate user: %s")

	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.NewKind("access denied for user %q")
)

// String returns all the permissions set to on.
func (p Permission) String() string {
	var str []string
	for k, v := range PermissionNames {
		if p&v != 0 {
			str = append(str, k)
		}
	}
	sort.Strings(str)
	return strings.Join(str, ", ")
}

// Auth interface provides authentication and authorization methods.
type Auth interface {
	// Authenticate checks the credentials of a user.
	Authenticate(user, password string) error
	// Allowed checks that the user of the context holds the permission
	// and may read every table of the list.
	Allowed(ctx *sql.Context, permission Permission, tables []sql.TableName) error
}
