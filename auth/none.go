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

import "gopkg.in/src-d/go-queryplan.v0/sql"

// None is an Auth method that always succeeds.
type None struct{}

// Authenticate implements Auth interface.
func (n *None) Authenticate(string, string) error {
	return nil
}

// Allowed implements Auth interface.
func (n *None) Allowed(*sql.Context, Permission, []sql.TableName) error {
	return nil
}
