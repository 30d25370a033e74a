// Package redis connects foremit to Redis pub/sub.
//
// Client wraps go-redis with foremit logging and configuration. Subscribe
// returns a *redis.PubSub ready to be adapted with source.Redis:
//
//	client, err := redis.New(cfg, log)
//	ps, err := client.Subscribe(ctx, "events")
//	seq, err := sequence.Wrap[*goredis.Message](source.Redis(ctx, ps),
//	    sequence.WithEvent(source.EventMessage))
package redis
