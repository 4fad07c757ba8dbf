package migrations

import _ "embed"

//go:embed 0002_create_players.sql
var createPlayersSQL string

func init() {
	Migrations.MustRegister(
		exec(createPlayersSQL),
		exec(`DROP TABLE IF EXISTS players`),
	)
}
