package migrations

import _ "embed"

//go:embed 0003_create_scoring.sql
var createScoringSQL string

func init() {
	Migrations.MustRegister(
		exec(createScoringSQL),
		exec(`DROP TABLE IF EXISTS leaderboard, badges, player_progress, scores`),
	)
}
