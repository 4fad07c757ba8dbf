package migrations

import _ "embed"

//go:embed 0001_create_missions.sql
var createMissionsSQL string

func init() {
	Migrations.MustRegister(
		exec(createMissionsSQL),
		exec(`DROP TABLE IF EXISTS missions`),
	)
}
