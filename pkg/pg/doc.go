// Package pg bootstraps a pgx/v5 connection pool, applies goose migrations
// from an embedded filesystem and classifies common PostgreSQL errors.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.FS, ".", cfg, log); err != nil {
//		return err
//	}
//
// IsDuplicateKeyError and IsNotFoundError unwrap pgx errors so business code
// can branch without importing pgconn.
package pg
