package migrations

import _ "embed"

//go:embed 0004_player_stats_function.sql
var playerStatsFunctionSQL string

func init() {
	Migrations.MustRegister(
		exec(playerStatsFunctionSQL),
		exec(`DROP FUNCTION IF EXISTS update_player_stats_and_leaderboard(TEXT)`),
	)
}
