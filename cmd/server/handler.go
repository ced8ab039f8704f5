package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/rushteam/cinerec/config"
	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/engine"
)

type handler struct {
	eng      *engine.Engine
	cfg      config.RecommendConfig
	logger   zerolog.Logger
	validate *validator.Validate

	reqTotal    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
}

func newHandler(eng *engine.Engine, cfg config.RecommendConfig, logger zerolog.Logger) *handler {
	return &handler{
		eng:      eng,
		cfg:      cfg,
		logger:   logger,
		validate: validator.New(),
		reqTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cinerec_http_requests_total",
			Help: "HTTP 请求总数",
		}, []string{"path", "code"}),
		reqDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cinerec_http_request_duration_seconds",
			Help:    "HTTP 请求耗时",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
	}
}

// recommendRequest 是 POST /recommend 的请求体。
type recommendRequest struct {
	LikedActors    []string      `json:"liked_actors" validate:"omitempty,dive,min=1"`
	DislikedActors []string      `json:"disliked_actors" validate:"omitempty,dive,min=1"`
	TopK           int           `json:"top_k" validate:"gte=0"`
	Weights        *core.Weights `json:"weights"`
}

type recommendResponse struct {
	Recommendations []engine.Recommendation `json:"recommendations"`
}

// postRecommend 先对不喜欢列表做偏差修正，再执行推荐。
func (h *handler) postRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	topK := req.TopK
	if topK == 0 {
		topK = h.cfg.TopK
	}
	weights := h.cfg.Weights
	if req.Weights != nil {
		weights = *req.Weights
	}

	corrected := h.eng.CorrectBias(req.DislikedActors, h.cfg.DropFraction)

	recs, err := h.eng.Recommend(r.Context(), req.LikedActors, corrected, weights, topK)
	if err != nil {
		// 编码服务失败等属于请求失败，向调用方显式暴露
		h.logger.Error().Err(err).Msg("recommend failed")
		h.writeError(w, http.StatusBadGateway, "recommendation failed: "+err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, &recommendResponse{Recommendations: recs})
}

// getRandomActor 返回一个随机演员名，用于征集偏好。
func (h *handler) getRandomActor(w http.ResponseWriter, r *http.Request) {
	names := h.eng.RandomActors(1)
	if len(names) == 0 {
		h.writeError(w, http.StatusServiceUnavailable, "empty actor catalog")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"name": names[0]})
}

// getRandomActors 批量返回随机演员名（?n=，默认取配置的单轮数量）。
func (h *handler) getRandomActors(w http.ResponseWriter, r *http.Request) {
	n := h.cfg.ActorsPerRound
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "invalid n")
			return
		}
		n = parsed
	}
	h.writeJSON(w, http.StatusOK, map[string][]string{"names": h.eng.RandomActors(n)})
}

func (h *handler) getHealthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"films":  h.eng.CatalogSize(),
	})
}

func (h *handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("write response")
	}
}

func (h *handler) writeError(w http.ResponseWriter, code int, msg string) {
	h.writeJSON(w, code, map[string]string{"error": msg})
}

// metricsMiddleware 记录请求数与耗时。
func (h *handler) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)
		h.reqTotal.WithLabelValues(r.URL.Path, strconv.Itoa(sw.code)).Inc()
		h.reqDuration.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
