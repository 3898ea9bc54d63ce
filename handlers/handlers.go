package handlers

import (
	"go.uber.org/zap"

	"github.com/vastrika/storefront-backend-go/config"
	"github.com/vastrika/storefront-backend-go/shipping"
	"github.com/vastrika/storefront-backend-go/store"
)

// Handler bundles the dependencies of all HTTP handlers. Everything is
// injected; handlers never reach for ambient globals.
type Handler struct {
	store        store.Store
	orchestrator *shipping.Orchestrator
	dispatcher   *shipping.Dispatcher
	cfg          *config.Config
	log          *zap.Logger
}

func New(st store.Store, orch *shipping.Orchestrator, disp *shipping.Dispatcher, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{
		store:        st,
		orchestrator: orch,
		dispatcher:   disp,
		cfg:          cfg,
		log:          log,
	}
}
