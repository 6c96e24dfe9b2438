package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/duhsoft/aigateway/internal/api/handlers"
	"github.com/duhsoft/aigateway/internal/api/middleware"
	"github.com/duhsoft/aigateway/internal/auth"
	"github.com/duhsoft/aigateway/internal/cache"
	"github.com/duhsoft/aigateway/internal/config"
	"github.com/duhsoft/aigateway/internal/embedding"
	"github.com/duhsoft/aigateway/internal/finetune"
	"github.com/duhsoft/aigateway/internal/llm"
	"github.com/duhsoft/aigateway/internal/queue"
	"github.com/duhsoft/aigateway/internal/storage"
	"github.com/duhsoft/aigateway/internal/training"
	"github.com/duhsoft/aigateway/internal/vectorstore"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	jwt   *auth.JWTMiddleware
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		jwt:   auth.NewJWTMiddleware(cfg.Auth.JWTSecret),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Services
	gateway := llm.NewGateway(rt.cfg.AI)
	responseClient := llm.NewResponseClient(rt.cfg.AI)
	store := storage.NewLocalStorage(rt.cfg.Uploads.Dir)
	queueClient := queue.NewClient(rt.cfg.Redis)
	statsCache := cache.NewCache(rt.redis)

	vs := vectorstore.NewPgVectorStore(rt.db)
	embedSvc := embedding.NewService(gateway, rt.cfg.AI.EmbeddingDim)
	trainingSvc := training.NewService(rt.db, store, vs, queueClient, statsCache)
	retriever := training.NewRetriever(embedSvc, vs, rt.cfg.Uploads.MaxChunks)
	finetuneSvc := finetune.NewService(rt.db, store, responseClient, queueClient)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		chatH := handlers.NewChatHandler(gateway, responseClient, retriever)
		r.Route("/chat", func(r chi.Router) {
			r.Post("/completions", chatH.Complete)
			r.Post("/responses", chatH.CreateResponse)
			r.Post("/embed", chatH.Embed)
			r.Get("/models", chatH.Models)
		})

		convH := handlers.NewConversationsHandler(responseClient)
		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", convH.Create)
			r.Get("/", convH.List)
			r.Get("/{id}", convH.Get)
			r.Delete("/{id}", convH.Delete)
		})

		trainingH := handlers.NewTrainingHandler(trainingSvc, retriever, rt.cfg.Uploads.MaxSizeBytes)
		r.Route("/assistants/{assistantID}", func(r chi.Router) {
			r.Post("/documents", trainingH.Upload)
			r.Get("/documents", trainingH.List)
			r.Get("/documents/{docID}", trainingH.Get)
			r.Delete("/documents/{docID}", trainingH.Delete)
			r.Get("/stats", trainingH.Stats)
			r.Get("/context", trainingH.Context)
		})

		finetuneH := handlers.NewFinetuneHandler(finetuneSvc, responseClient)
		r.Route("/finetune", func(r chi.Router) {
			r.Post("/jobs", finetuneH.StartJob)
			r.Get("/jobs", finetuneH.ListJobs)
			r.Get("/jobs/{id}", finetuneH.GetJob)
			r.Post("/jobs/{id}/cancel", finetuneH.CancelJob)
			r.Get("/provider/jobs", finetuneH.ListProviderJobs)
			r.Get("/files", finetuneH.ListFiles)
			r.Delete("/files/{id}", finetuneH.DeleteFile)
		})

		// Retired provider-side Assistants surface; kept so old clients
		// get 410 instead of 404.
		assistantsH := handlers.NewAssistantsHandler(responseClient)
		r.Post("/threads", assistantsH.CreateThread)
		r.Get("/provider/assistants", assistantsH.ListProviderAssistants)
	})

	return r
}
