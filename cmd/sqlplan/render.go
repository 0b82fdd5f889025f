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
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	sqle "gopkg.in/src-d/go-queryplan.v0"
)

// renderResult writes the rows of the result as a markdown table.
func renderResult(w io.Writer, result *sqle.Result) error {
	var b strings.Builder

	alignment := make([]tw.Align, len(result.Columns))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(&b,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)

	headers := make([]string, len(result.Columns))
	for i, c := range result.Columns {
		headers[i] = c.String()
	}
	table.Header(headers)

	for _, row := range result.Rows {
		values := make([]string, len(row))
		for i, v := range row {
			values[i] = formatValue(v)
		}
		if err := table.Append(values); err != nil {
			return err
		}
	}

	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(&b, "\n_%d rows_\n", len(result.Rows))
	_, err := io.WriteString(w, b.String())
	return err
}

func formatValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}
