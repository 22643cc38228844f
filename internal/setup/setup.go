package setup

import (
	"github.com/openboard-dev/openboard/internal/config"
	"github.com/openboard-dev/openboard/internal/handler"
	"github.com/openboard-dev/openboard/internal/jwt"
	"github.com/openboard-dev/openboard/internal/middleware"
	"github.com/openboard-dev/openboard/internal/render"
	"github.com/openboard-dev/openboard/internal/service"
	"github.com/openboard-dev/openboard/internal/storage/pg"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	Config         *config.Config
	Storage        *pg.Storage
	Handler        *handler.Handler
	Jwt            jwt.JwtService
	AuthMiddleware *middleware.Auth
	Analytics      *service.Analytics
}

// SetupDependencies wires storage, services and handlers together.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())

	auth := service.NewAuth(storage, jwtService)
	editor := service.NewEditor(storage, &cfg.Public)
	board := service.NewBoard(storage, editor)
	access := service.NewAccess(storage, jwtService, cfg.AccessGrantTTL())
	analytics := service.NewAnalytics(storage)

	renderer := render.New()
	h := handler.New(auth, board, editor, access, analytics, renderer, storage, cfg)

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Handler:        h,
		Jwt:            jwtService,
		AuthMiddleware: middleware.NewAuth(jwtService, cfg.Public.SecureCookies),
		Analytics:      analytics,
	}, nil
}
