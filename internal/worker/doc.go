// Package worker implements the switch worker lifecycle and Redis Streams integration.
//
// The worker reads Switch invocations from a Redis Stream consumer group,
// routes their items and publishes the lanes back to the orchestrator.
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(&redis.Options{...})
//	executor, _ := node.NewExecutor(cfg.LaneCount, eval.Dialect(cfg.ExpressionDialect), logger)
//	stateStore := store.NewRedisStateStore(redisClient, cfg.StateTTL, logger)
//
//	worker := worker.NewWorker(cfg, redisClient, executor, stateStore, logger)
//	if err := worker.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer worker.Stop()
//
// The worker handles:
//   - Redis Streams subscription and consumer group management
//   - Loading items from the execution state when a request omits them
//   - Result publishing, with failures on the <result stream>.errors stream
//   - Graceful shutdown
package worker
