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

package sqle

import (
	"io/ioutil"

	"github.com/sirupsen/logrus"
	"gopkg.in/src-d/go-errors.v1"
	"gopkg.in/yaml.v2"

	"gopkg.in/src-d/go-queryplan.v0/auth"
)

var (
	// ErrInvalidConfig is returned when a configuration file can not be
	// decoded.
	ErrInvalidConfig = errors.NewKind("invalid configuration: %s")

	// ErrInvalidLimit is returned when LIMIT or OFFSET is not a
	// non-negative integer.
	ErrInvalidLimit = errors.NewKind("invalid LIMIT or OFFSET value: %s")
)

// Config for the Engine.
//
//	case_insensitive: true
//	debug: false
//	statement_cache_size: 256
//	auth: users.yaml
//	audit: true
type Config struct {
	// CaseInsensitive makes table and column names match regardless of case.
	CaseInsensitive bool `yaml:"case_insensitive"`
	// Debug logs the decisions of the planner.
	Debug bool `yaml:"debug"`
	// StatementCacheSize is the number of parsed statements kept.
	StatementCacheSize int `yaml:"statement_cache_size"`
	// Auth is the path of the YAML users file. No file means every user
	// may run every query.
	Auth string `yaml:"auth"`
	// Audit logs every authentication, authorization and query.
	Audit bool `yaml:"audit"`
	// Storage is the path of a bolt database holding the tables. When
	// empty the tables are kept in memory.
	Storage string `yaml:"storage"`
	// Schema is the schema unqualified table names refer to.
	Schema string `yaml:"schema"`

	// AuthMethod overrides the method built from Auth.
	AuthMethod auth.Auth `yaml:"-"`
}

// ParseConfig decodes a YAML configuration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, ErrInvalidConfig.Wrap(err, err.Error())
	}
	return &cfg, nil
}

// LoadConfig reads the YAML configuration at the given path.
func LoadConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

func (c *Config) authMethod() (auth.Auth, error) {
	a := c.AuthMethod
	if a == nil {
		if c.Auth == "" {
			a = new(auth.None)
		} else {
			native, err := auth.NewNativeFile(c.Auth)
			if err != nil {
				return nil, err
			}
			a = native
		}
	}

	if c.Audit {
		if _, ok := a.(*auth.Audit); !ok {
			a = auth.NewAudit(a, auth.NewAuditLog(logrus.StandardLogger()))
		}
	}
	return a, nil
}
