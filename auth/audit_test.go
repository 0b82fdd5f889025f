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

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-queryplan.v0/auth"
	"gopkg.in/src-d/go-queryplan.v0/sql"
)

type auditTest struct {
	authenticated []string
	authorized    []error
	tables        [][]sql.TableName
	queries       int
}

func (a *auditTest) Authentication(user string, err error) {
	a.authenticated = append(a.authenticated, user)
}

func (a *auditTest) Authorization(_ *sql.Context, _ auth.Permission, tables []sql.TableName, err error) {
	a.authorized = append(a.authorized, err)
	a.tables = append(a.tables, tables)
}

func (a *auditTest) Query(*sql.Context, time.Duration, error) {
	a.queries++
}

func TestAudit(t *testing.T) {
	require := require.New(t)

	at := new(auditTest)
	a := auth.NewAudit(auth.NewNativeSingle("user", "pass", auth.ReadPerm), at)

	require.NoError(a.Authenticate("user", "pass"))
	require.Error(a.Authenticate("other", "pass"))
	require.Equal([]string{"user", "other"}, at.authenticated)

	ctx := userContext("user")
	tables := []sql.TableName{table("", "emp")}
	require.NoError(a.Allowed(ctx, auth.ReadPerm, tables))
	err := a.Allowed(ctx, auth.ExplainPerm, nil)
	require.True(auth.ErrNotAuthorized.Is(err))
	require.Len(at.authorized, 2)
	require.NoError(at.authorized[0])
	require.Equal(err, at.authorized[1])
	require.Equal(tables, at.tables[0])

	nested := auth.NewAudit(a, at)
	nested.Query(ctx, time.Millisecond, nil)
	require.Equal(2, at.queries)
}

func TestAuditLog(t *testing.T) {
	require := require.New(t)

	logger, hook := test.NewNullLogger()
	l := auth.NewAuditLog(logger)

	l.Authentication("user", nil)
	e := hook.LastEntry()
	require.NotNil(e)
	require.Equal(logrus.InfoLevel, e.Level)
	m := logrus.Fields{
		"system":  "audit",
		"action":  "authentication",
		"user":    "user",
		"success": true,
	}
	require.Equal(m, e.Data)

	err := auth.ErrInvalidCredentials.New("user")
	l.Authentication("user", err)
	e = hook.LastEntry()
	m["success"] = false
	m["err"] = err
	require.Equal(m, e.Data)

	ctx := sql.NewContext(context.TODO(), sql.WithUser("user"), sql.WithQuery("SELECT 1 FROM a"))
	l.Authorization(ctx, auth.ReadPerm, []sql.TableName{table("", "a"), table("s", "b")}, nil)
	e = hook.LastEntry()
	require.Equal(logrus.Fields{
		"system":     "audit",
		"action":     "authorization",
		"permission": "read",
		"tables":     "a,s.b",
		"user":       "user",
		"query":      "SELECT 1 FROM a",
		"context_id": ctx.ID().String(),
		"success":    true,
	}, e.Data)

	l.Query(ctx, time.Second, nil)
	e = hook.LastEntry()
	require.Equal("query", e.Data["action"])
	require.Equal(time.Second, e.Data["duration"])
	require.Len(hook.Entries, 4)
}
