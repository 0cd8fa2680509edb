package migrations

import (
	"context"

	activitydb "github.com/capital-ladder/backend/app/modules/activity/infrastructure/repositories"
	challengedb "github.com/capital-ladder/backend/app/modules/challenge/infrastructure/repositories"
	profiledb "github.com/capital-ladder/backend/app/modules/profile/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	models := []interface{}{
		(*profiledb.Profile)(nil),
		(*challengedb.Challenge)(nil),
		(*activitydb.Activity)(nil),
		(*activitydb.PushToken)(nil),
	}

	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		for _, model := range models {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return err
			}
		}

		indexes := []string{
			"CREATE INDEX IF NOT EXISTS idx_challenges_status ON challenges (status)",
			"CREATE INDEX IF NOT EXISTS idx_challenges_challenger ON challenges (challenger_id)",
			"CREATE INDEX IF NOT EXISTS idx_challenges_challenged ON challenges (challenged_id)",
			"CREATE INDEX IF NOT EXISTS idx_challenges_deadline ON challenges (deadline) WHERE status = 'pending'",
			"CREATE INDEX IF NOT EXISTS idx_activities_created_at ON activities (created_at DESC)",
			"CREATE INDEX IF NOT EXISTS idx_push_tokens_profile ON push_tokens (profile_id)",
		}
		for _, stmt := range indexes {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		// Drop in reverse dependency order.
		for i := len(models) - 1; i >= 0; i-- {
			if _, err := db.NewDropTable().Model(models[i]).IfExists().Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}
