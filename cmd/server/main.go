package main

import (
	"context"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	subhttp "github.com/dmitrymomot/subtrack/modules/subscription"
	"github.com/dmitrymomot/subtrack/pkg/clientip"
	"github.com/dmitrymomot/subtrack/pkg/config"
	"github.com/dmitrymomot/subtrack/pkg/dynamo"
	"github.com/dmitrymomot/subtrack/pkg/httpserver"
	"github.com/dmitrymomot/subtrack/pkg/logger"
	"github.com/dmitrymomot/subtrack/pkg/ratelimit"
	"github.com/dmitrymomot/subtrack/pkg/redis"
	"github.com/dmitrymomot/subtrack/pkg/requestid"
	subsvc "github.com/dmitrymomot/subtrack/svc/subscription"
)

func main() {
	ctx := context.Background()

	var (
		logCfg    logger.Config
		dynamoCfg dynamo.Config
		redisCfg  redis.Config
		httpCfg   httpserver.Config
		limitCfg  ratelimit.Limit
	)
	config.MustLoad(&logCfg)
	config.MustLoad(&dynamoCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&limitCfg)

	log := logger.New(logCfg, logger.WithContextExtractors(requestid.LogExtractor))

	client, err := dynamo.Connect(ctx, dynamoCfg)
	if err != nil {
		log.ErrorContext(ctx, "dynamodb connection failed", logger.Error(err))
		os.Exit(1)
	}
	store := subsvc.NewDynamoStore(client, dynamoCfg.Table)

	var (
		planCache  subsvc.PlanCache = subsvc.NoopPlanCache{}
		limitStore ratelimit.Store
	)
	if redisCfg.Enabled() {
		redisClient, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			log.ErrorContext(ctx, "redis connection failed", logger.Error(err))
			os.Exit(1)
		}
		defer redisClient.Close()
		planCache = subsvc.NewRedisPlanCache(redisClient, 0)
		limitStore = ratelimit.NewRedisStore(redisClient)
	} else {
		memStore := ratelimit.NewMemoryStore()
		defer memStore.Close()
		limitStore = memStore
	}

	limiter, err := ratelimit.NewLimiter(limitStore, limitCfg)
	if err != nil {
		log.ErrorContext(ctx, "invalid rate limit configuration", logger.Error(err))
		os.Exit(1)
	}

	plans := subsvc.NewResolver(store, subsvc.WithPlanCache(planCache))
	query := subsvc.NewQueryService(store, plans)
	lifecycle := subsvc.NewLifecycle(store, plans, query)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Get("/healthz", httpserver.HealthCheckHandler(log, dynamo.Healthcheck(client, dynamoCfg.Table)))
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(ratelimit.Middleware(limiter, clientip.FromRequest))
		api.Mount("/", subhttp.Router(subhttp.NewHandler(lifecycle, query, log)))
	})

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	if err := srv.Run(ctx, r); err != nil {
		log.ErrorContext(ctx, "server exited", logger.Error(err))
		os.Exit(1)
	}
}
