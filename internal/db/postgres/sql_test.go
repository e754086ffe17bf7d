package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbmasq/dbmasq/internal/domains"
)

func testTable() *domains.TableConfig {
	return &domains.TableConfig{
		Name:       "person",
		PrimaryKey: []string{"id"},
		Columns: []*domains.ColumnConfig{
			{Name: "first_name", Type: "FirstName"},
			{Name: "email", Type: "Email"},
		},
	}
}

func testColTypes() map[string]string {
	return map[string]string{
		"id":         "integer",
		"first_name": "character varying",
		"email":      "text",
	}
}

func TestQuoteIdent(t *testing.T) {
	require.Equal(t, `"person"`, quoteIdent("person"))
	require.Equal(t, `"weird""name"`, quoteIdent(`weird"name`))
}

func TestBuildCountQuery(t *testing.T) {
	tbl := testTable()
	require.Equal(t, `SELECT count(*) FROM "public"."person"`, buildCountQuery(tbl))

	tbl.Filter = "deleted_at IS NULL"
	require.Equal(t,
		`SELECT count(*) FROM "public"."person" WHERE deleted_at IS NULL`,
		buildCountQuery(tbl),
	)
}

func TestBuildSelectQuery(t *testing.T) {
	query := buildSelectQuery(testTable(), []string{"first_name", "email"})
	require.Equal(t,
		`SELECT "id"::text, "first_name"::text, "email"::text FROM "public"."person"`+
			` ORDER BY "id" OFFSET $1 LIMIT $2`,
		query,
	)
}

func TestBuildSelectQuery_composite_key_and_filter(t *testing.T) {
	tbl := testTable()
	tbl.Schema = "sales"
	tbl.PrimaryKey = []string{"order_id", "line"}
	tbl.Filter = "status <> 'void'"

	query := buildSelectQuery(tbl, []string{"email"})
	require.Equal(t,
		`SELECT "order_id"::text, "line"::text, "email"::text FROM "sales"."person"`+
			` WHERE status <> 'void' ORDER BY "order_id", "line" OFFSET $1 LIMIT $2`,
		query,
	)
}

func TestBuildCreateStageQuery(t *testing.T) {
	query := buildCreateStageQuery("dbmasq_stage_1", testTable(), []string{"first_name"})
	require.Equal(t,
		`CREATE TEMP TABLE "dbmasq_stage_1" ("id" text, "first_name" text) ON COMMIT DROP`,
		query,
	)
}

func TestBuildMergeQuery(t *testing.T) {
	query := buildMergeQuery("dbmasq_stage_1", testTable(), []string{"first_name", "email"}, testColTypes())
	require.Equal(t,
		`UPDATE "public"."person" AS t SET "first_name" = s."first_name"::character varying,`+
			` "email" = s."email"::text FROM "dbmasq_stage_1" AS s WHERE t."id" = s."id"::integer`,
		query,
	)
}

func TestBuildRowUpdateQuery(t *testing.T) {
	query := buildRowUpdateQuery(testTable(), []string{"first_name", "email"}, testColTypes())
	require.Equal(t,
		`UPDATE "public"."person" SET "first_name" = $1::character varying, "email" = $2::text`+
			` WHERE "id" = $3::integer`,
		query,
	)
}

func TestEnabledColumns_skips_disabled(t *testing.T) {
	disabled := false
	tbl := testTable()
	tbl.Columns[1].Enabled = &disabled
	require.Equal(t, []string{"first_name"}, enabledColumns(tbl))
}
