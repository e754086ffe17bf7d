// Copyright 2025 Dbmasq
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

package postgres

import (
	"fmt"
	"strings"

	"github.com/dbmasq/dbmasq/internal/domains"
)

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func qualifiedName(t *domains.TableConfig) string {
	return quoteIdent(t.SchemaName()) + "." + quoteIdent(t.Name)
}

func quoteList(names []string) []string {
	res := make([]string, len(names))
	for idx, n := range names {
		res[idx] = quoteIdent(n)
	}
	return res
}

func buildCountQuery(t *domains.TableConfig) string {
	query := fmt.Sprintf("SELECT count(*) FROM %s", qualifiedName(t))
	if t.Filter != "" {
		query += " WHERE " + t.Filter
	}
	return query
}

// buildSelectQuery reads the primary key and the enabled columns as text,
// ordered by the primary key so batch windows are stable between calls.
func buildSelectQuery(t *domains.TableConfig, columns []string) string {
	selects := make([]string, 0, len(t.PrimaryKey)+len(columns))
	for _, pk := range t.PrimaryKey {
		selects = append(selects, quoteIdent(pk)+"::text")
	}
	for _, c := range columns {
		selects = append(selects, quoteIdent(c)+"::text")
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s",
		strings.Join(selects, ", "), qualifiedName(t),
	)
	if t.Filter != "" {
		query += " WHERE " + t.Filter
	}
	query += fmt.Sprintf(
		" ORDER BY %s OFFSET $1 LIMIT $2",
		strings.Join(quoteList(t.PrimaryKey), ", "),
	)
	return query
}

// buildCreateStageQuery creates the per-transaction staging table: all columns
// are text, typed casts happen in the merge statement.
func buildCreateStageQuery(stage string, t *domains.TableConfig, columns []string) string {
	defs := make([]string, 0, len(t.PrimaryKey)+len(columns))
	for _, pk := range t.PrimaryKey {
		defs = append(defs, quoteIdent(pk)+" text")
	}
	for _, c := range columns {
		defs = append(defs, quoteIdent(c)+" text")
	}
	return fmt.Sprintf(
		"CREATE TEMP TABLE %s (%s) ON COMMIT DROP",
		quoteIdent(stage), strings.Join(defs, ", "),
	)
}

// buildMergeQuery performs the single set-based update from the staging table
// into the target, joined on the primary key, casting staged text back to the
// introspected column types.
func buildMergeQuery(stage string, t *domains.TableConfig, columns []string, colTypes map[string]string) string {
	sets := make([]string, 0, len(columns))
	for _, c := range columns {
		sets = append(sets, fmt.Sprintf("%s = s.%s::%s", quoteIdent(c), quoteIdent(c), colTypes[c]))
	}
	conds := make([]string, 0, len(t.PrimaryKey))
	for _, pk := range t.PrimaryKey {
		conds = append(conds, fmt.Sprintf("t.%s = s.%s::%s", quoteIdent(pk), quoteIdent(pk), colTypes[pk]))
	}
	return fmt.Sprintf(
		"UPDATE %s AS t SET %s FROM %s AS s WHERE %s",
		qualifiedName(t), strings.Join(sets, ", "), quoteIdent(stage), strings.Join(conds, " AND "),
	)
}

// buildRowUpdateQuery is the row-by-row fallback statement used when the
// set-based merge hits a uniqueness conflict.
func buildRowUpdateQuery(t *domains.TableConfig, columns []string, colTypes map[string]string) string {
	sets := make([]string, 0, len(columns))
	arg := 1
	for _, c := range columns {
		sets = append(sets, fmt.Sprintf("%s = $%d::%s", quoteIdent(c), arg, colTypes[c]))
		arg++
	}
	conds := make([]string, 0, len(t.PrimaryKey))
	for _, pk := range t.PrimaryKey {
		conds = append(conds, fmt.Sprintf("%s = $%d::%s", quoteIdent(pk), arg, colTypes[pk]))
		arg++
	}
	return fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s",
		qualifiedName(t), strings.Join(sets, ", "), strings.Join(conds, " AND "),
	)
}

const columnTypesQuery = `
SELECT column_name, format_type(a.atttypid, NULL)
FROM information_schema.columns c
JOIN pg_catalog.pg_namespace n ON n.nspname = c.table_schema
JOIN pg_catalog.pg_class cl ON cl.relname = c.table_name AND cl.relnamespace = n.oid
JOIN pg_catalog.pg_attribute a ON a.attrelid = cl.oid AND a.attname = c.column_name
WHERE c.table_schema = $1 AND c.table_name = $2`
