// Package redis connects to Redis with retries and provides StateStore, the
// shared one-time OAuth state storage used by the provider exchange.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		// errors.Is(err, redis.ErrNotReady)
//	}
//	defer client.Close()
//
//	states := redis.NewStateStore(client, cfg.KeyPrefix)
//	ready := redis.Healthcheck(client)
package redis
