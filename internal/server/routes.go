package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/tarotfutura/futura/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Tarot Futura API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, d.Checks).Routes())

	r.Route("/api", func(r chi.Router) {
		r.Get("/cards", handleCards())
		r.Get("/personality/questions", handlePersonalityQuestions(d.Personality))
		r.Post("/personality/result", handlePersonalityResult(d.Personality))
		r.Get("/horoscopes", handleSigns())
		r.Get("/horoscopes/{sign}", handleHoroscope(logger, d.Horoscopes))
		r.Get("/events", handleEvents(logger, d.Tokens, d.Broker, d.Revealer))

		// Seeker routes, Bearer JWT.
		r.Group(func(r chi.Router) {
			r.Use(userAuthMiddleware(d.Tokens))
			r.Post("/readings", handleCreateReading(logger, d.Store, d.Drawer, d.Revealer, d.Broker))
			r.Get("/readings", handleListReadings(logger, d.Store))
			r.Get("/readings/{id}", handleGetReading(logger, d.Store))
			r.Post("/readings/{id}/interpret", handleInterpret(logger, d.Store, d.Interpreter, d.Broker))
			r.Post("/readings/{id}/unlock", handleUnlock(logger, d.Unlocker, d.Broker))
		})

		r.Post("/admin/login", handleAdminLogin(logger, d.Store))
		r.Post("/admin/logout", handleAdminLogout(logger, d.Store))
		r.Group(func(r chi.Router) {
			r.Use(adminAuthMiddleware(d.Store))
			r.Get("/admin/me", handleAdminMe())
			r.Get("/admin/payments", handleAdminPayments(logger, d.Store))
		})

		r.NotFound(handleAPINotFound)
	})

	if d.SPADir != "" {
		if info, err := os.Stat(d.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", d.SPADir)
			r.NotFound(handleSPA(d.SPADir))
		}
	}
}
