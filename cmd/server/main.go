// cinerec 推荐服务入口：加载片库、构建 Embedding 索引、暴露 HTTP API。
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rushteam/cinerec/catalog"
	"github.com/rushteam/cinerec/config"
	"github.com/rushteam/cinerec/engine"
	"github.com/rushteam/cinerec/service"
	"github.com/rushteam/cinerec/store"
	"github.com/rushteam/cinerec/vector"
)

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *configPath).Msg("load config")
	}

	// 片库加载：行级坏数据退化为空字段，不会让启动失败
	actors, err := catalog.LoadActorsCSV(cfg.Data.ActorsCSV)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Data.ActorsCSV).Msg("load actors")
	}
	rows, err := catalog.LoadFilmsCSV(cfg.Data.FilmsCSV)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Data.FilmsCSV).Msg("load films")
	}
	cat := catalog.Build(actors, rows)
	logger.Info().Int("films", cat.Len()).Int("actors", len(cat.ActorNames())).Msg("catalog loaded")

	encoder := service.NewSTEncoderClient(
		cfg.Encoder.Endpoint,
		cfg.Encoder.Model,
		service.WithSTEncoderTimeout(time.Duration(cfg.Encoder.Timeout)*time.Second),
		service.WithSTEncoderAPIKey(cfg.Encoder.APIKey),
	)

	// Embedding 缓存后端（可选）
	var indexOpts []vector.Option
	if st := buildStore(logger, cfg.Store); st != nil {
		defer st.Close()
		indexOpts = append(indexOpts,
			vector.WithStore(st, cfg.Encoder.Model),
			vector.WithCacheTTL(cfg.Store.CacheTTL),
		)
	}

	start := time.Now()
	idx, err := vector.Build(context.Background(), cat, encoder, indexOpts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("build embedding index")
	}
	logger.Info().
		Int("films", idx.Len()).
		Int("dim", idx.Dim()).
		Dur("elapsed", time.Since(start)).
		Msg("embedding index ready")

	// 配置驱动的附加节点（表达式过滤、多样性重排等）
	extraNodes, err := config.BuildNodes(cfg.Nodes)
	if err != nil {
		logger.Fatal().Err(err).Msg("build pipeline nodes")
	}

	eng := engine.New(cat, idx, encoder, engine.WithNodes(extraNodes...))

	h := newHandler(eng, cfg.Recommend, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(h.metricsMiddleware)

	r.Get("/actor", h.getRandomActor)
	r.Get("/actors", h.getRandomActors)
	r.Post("/recommend", h.postRecommend)
	r.Get("/healthz", h.getHealthz)
	r.Handle("/metrics", promhttp.Handler())

	logger.Info().Str("addr", cfg.Server.Addr).Msg("listening")
	if err := http.ListenAndServe(cfg.Server.Addr, r); err != nil {
		logger.Fatal().Err(err).Msg("serve")
	}
}

// buildStore 按配置创建缓存后端；Redis 连不上时只告警并退化为无缓存。
func buildStore(logger zerolog.Logger, cfg config.StoreConfig) store.Store {
	switch cfg.Backend {
	case "memory":
		return store.NewMemoryStore()
	case "redis":
		st, err := store.NewRedisStore(cfg.Addr, cfg.DB)
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis unavailable, embedding cache disabled")
			return nil
		}
		return st
	default:
		return nil
	}
}
