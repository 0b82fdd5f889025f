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
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sqle "gopkg.in/src-d/go-queryplan.v0"
	"gopkg.in/src-d/go-queryplan.v0/mem"
	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/storage/bolt"
)

type options struct {
	config   string
	fixtures string
	storage  string
	schema   string
	user     string
	password string
	debug    bool
}

func newRootCommand() *cobra.Command {
	opts := new(options)

	root := &cobra.Command{
		Use:   "sqlplan",
		Short: "sqlplan plans and runs SELECT queries.",
		Example: `sqlplan query --fixtures tables.yaml "SELECT name FROM emp WHERE salary > 100"
sqlplan explain --storage tables.db "SELECT * FROM a, b WHERE a.id = b.id"
sqlplan import --fixtures tables.yaml --storage tables.db`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if opts.debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.config, "config", "", "engine configuration file")
	flags.StringVar(&opts.fixtures, "fixtures", "", "YAML file with the databases to load")
	flags.StringVar(&opts.storage, "storage", "", "bolt database holding the tables")
	flags.StringVar(&opts.schema, "schema", "", "schema unqualified table names refer to")
	flags.StringVarP(&opts.user, "user", "u", "root", "user running the queries")
	flags.StringVarP(&opts.password, "password", "p", "", "password of the user")
	flags.BoolVar(&opts.debug, "debug", false, "log planner decisions")

	root.AddCommand(
		newQueryCommand(opts),
		newExplainCommand(opts),
		newImportCommand(opts),
	)
	return root
}

func newQueryCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run queries and print their results. Without arguments queries are read from stdin, one per line.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(opts, func(e *sqle.Engine) error {
				return forEachQuery(cmd, args, func(q string) error {
					result, err := e.Query(context.Background(), opts.user, q)
					if err != nil {
						return err
					}
					return renderResult(cmd.OutOrStdout(), result)
				})
			})
		},
	}
}

func newExplainCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [SQL]",
		Short: "Print the plan of queries without running them.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(opts, func(e *sqle.Engine) error {
				return forEachQuery(cmd, args, func(q string) error {
					plan, err := e.Explain(context.Background(), opts.user, q)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), plan)
					return err
				})
			})
		},
	}
}

func newImportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Copy the tables of a fixtures file into a bolt database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.fixtures == "" || opts.storage == "" {
				return fmt.Errorf("import needs both --fixtures and --storage")
			}

			catalog, err := mem.LoadFixturesFile(opts.fixtures)
			if err != nil {
				return err
			}

			store, err := bolt.Open(opts.storage, catalog.CurrentSchema())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Import(sql.NewEmptyContext(), catalog); err != nil {
				return err
			}

			for _, db := range catalog.DatabaseNames() {
				names, err := store.TableNames(db)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", db, strings.Join(names, ", "))
			}
			return nil
		},
	}
}

// withEngine builds the engine described by the options, authenticates the
// user and calls fn with it.
func withEngine(opts *options, fn func(*sqle.Engine) error) error {
	cfg := new(sqle.Config)
	if opts.config != "" {
		var err error
		if cfg, err = sqle.LoadConfig(opts.config); err != nil {
			return err
		}
	}
	if opts.storage != "" {
		cfg.Storage = opts.storage
	}
	if opts.schema != "" {
		cfg.Schema = opts.schema
	}
	cfg.Debug = cfg.Debug || opts.debug

	catalog, closeCatalog, err := openCatalog(cfg, opts.fixtures)
	if err != nil {
		return err
	}
	defer closeCatalog()

	e, err := sqle.New(catalog, cfg)
	if err != nil {
		return err
	}

	if err := e.Auth.Authenticate(opts.user, opts.password); err != nil {
		return err
	}
	return fn(e)
}

func openCatalog(cfg *sqle.Config, fixtures string) (sql.Catalog, func(), error) {
	if cfg.Storage != "" {
		store, err := bolt.Open(cfg.Storage, cfg.Schema)
		if err != nil {
			return nil, nil, err
		}

		closer := func() {
			if err := store.Close(); err != nil {
				logrus.WithField("err", err).Warn("unable to close table store")
			}
		}

		if cfg.Schema == "" {
			schemas, err := store.Schemas()
			if err != nil {
				closer()
				return nil, nil, err
			}
			if len(schemas) > 0 {
				store.SetCurrentSchema(schemas[0])
			}
		}
		return store, closer, nil
	}

	if fixtures == "" {
		return nil, nil, fmt.Errorf("either --fixtures or --storage is required")
	}

	catalog, err := mem.LoadFixturesFile(fixtures)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Schema != "" {
		catalog.SetCurrentSchema(cfg.Schema)
	}
	return catalog, func() {}, nil
}

// forEachQuery calls fn with the query given as argument or, when there is
// none, with every non empty line of the command input.
func forEachQuery(cmd *cobra.Command, args []string, fn func(string) error) error {
	if len(args) == 1 {
		return fn(args[0])
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		if err := fn(q); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err)
		}
	}
	return scanner.Err()
}
