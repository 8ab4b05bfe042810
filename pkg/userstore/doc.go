// Package userstore implements auth.UserStorage on MongoDB and PostgreSQL.
//
// Both stores guarantee at most one account per normalized email with a
// unique index, and report a losing insert as auth.ErrEmailAlreadyExists so
// the reconciler can re-read the winner.
//
//	users := userstore.NewMongo(db)
//	if err := users.EnsureIndexes(ctx); err != nil {
//		return err
//	}
//
//	if err := pg.Migrate(ctx, pool, userstore.Migrations, "migrations", cfg, log); err != nil {
//		return err
//	}
//	users := userstore.NewPostgres(pool)
package userstore
