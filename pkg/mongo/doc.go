// Package mongo connects to MongoDB with retries and exposes a readiness check.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		// errors.Is(err, mongo.ErrConnect)
//	}
//	ready := mongo.Healthcheck(db.Client())
//
// IsDuplicateKeyError classifies unique index violations so stores can turn
// them into domain errors.
package mongo
