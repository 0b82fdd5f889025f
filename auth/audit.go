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
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"gopkg.in/src-d/go-queryplan.v0/sql"
)

// AuditMethod is called to log the audit trail of actions.
type AuditMethod interface {
	// Authentication logs an authentication event.
	Authentication(user string, err error)
	// Authorization logs an authorization event.
	Authorization(ctx *sql.Context, p Permission, tables []sql.TableName, err error)
	// Query logs a query execution.
	Query(ctx *sql.Context, d time.Duration, err error)
}

// NewAudit creates a wrapped Auth that sends audit trails to the specified
// method.
func NewAudit(auth Auth, method AuditMethod) *Audit {
	return &Audit{
		auth:   auth,
		method: method,
	}
}

// Audit is an Auth method proxy that sends audit trails to the specified
// AuditMethod.
type Audit struct {
	auth   Auth
	method AuditMethod
}

// Authenticate implements Auth interface.
func (a *Audit) Authenticate(user, password string) error {
	err := a.auth.Authenticate(user, password)
	a.method.Authentication(user, err)
	return err
}

// Allowed implements Auth interface.
func (a *Audit) Allowed(ctx *sql.Context, permission Permission, tables []sql.TableName) error {
	err := a.auth.Allowed(ctx, permission, tables)
	a.method.Authorization(ctx, permission, tables, err)
	return err
}

// Query logs the execution of a query.
func (a *Audit) Query(ctx *sql.Context, d time.Duration, err error) {
	if q, ok := a.auth.(*Audit); ok {
		q.Query(ctx, d, err)
	}
	a.method.Query(ctx, d, err)
}

// NewAuditLog creates a new AuditMethod that logs to a logrus.Logger.
func NewAuditLog(l *logrus.Logger) AuditMethod {
	la := l.WithField("system", "audit")
	return &AuditLog{
		log: la,
	}
}

const auditLogMessage = "audit trail"

// AuditLog logs audit trails to a logrus.Logger.
type AuditLog struct {
	log *logrus.Entry
}

// Authentication implements AuditMethod interface.
func (a *AuditLog) Authentication(user string, err error) {
	fields := logrus.Fields{
		"action":  "authentication",
		"user":    user,
		"success": true,
	}

	if err != nil {
		fields["success"] = false
		fields["err"] = err
	}

	a.log.WithFields(fields).Info(auditLogMessage)
}

func auditInfo(ctx *sql.Context, err error) logrus.Fields {
	fields := logrus.Fields{
		"user":       ctx.User(),
		"query":      ctx.Query(),
		"context_id": ctx.ID().String(),
		"success":    true,
	}

	if err != nil {
		fields["success"] = false
		fields["err"] = err
	}

	return fields
}

// Authorization implements AuditMethod interface.
func (a *AuditLog) Authorization(ctx *sql.Context, p Permission, tables []sql.TableName, err error) {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.String()
	}

	fields := auditInfo(ctx, err)
	fields["action"] = "authorization"
	fields["permission"] = p.String()
	fields["tables"] = strings.Join(names, ",")

	a.log.WithFields(fields).Info(auditLogMessage)
}

// Query implements AuditMethod interface.
func (a *AuditLog) Query(ctx *sql.Context, d time.Duration, err error) {
	fields := auditInfo(ctx, err)
	fields["action"] = "query"
	fields["duration"] = d

	a.log.WithFields(fields).Info(auditLogMessage)
}
