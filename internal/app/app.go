package app

import (
	"log/slog"

	"portfolio_admin/internal/apiclient"
	httpapp "portfolio_admin/internal/app/http"
	"portfolio_admin/internal/config"
	"portfolio_admin/internal/imaging"
	"portfolio_admin/internal/previews"
	draft "portfolio_admin/internal/services/draft_service"
	gallery "portfolio_admin/internal/services/gallery_service"
	"portfolio_admin/internal/services/inquiry"
	upload "portfolio_admin/internal/services/upload_service"
	httprouters "portfolio_admin/internal/transport/http"
)

const (
	previewBasePath = "/api/v1/previews"
	defaultCategory = "graphic-design"
)

type App struct {
	HTTPServer *httpapp.Server
}

func New(log *slog.Logger, cfg *config.Config) *App {
	api := apiclient.New(log, cfg.API.BaseURL, cfg.API.Timeout)

	registry := previews.NewRegistry(log, previewBasePath)
	normalizer := imaging.NewNormalizer(log, registry, cfg.Upload.MaxDimension, cfg.Upload.JPEGQuality)

	draftService := draft.New(log, registry, defaultCategory)
	uploadService := upload.New(log, api)
	galleryService := gallery.New(log, api)
	inquiryService := inquiry.New(log, cfg.Inquiry.WhatsAppNumber)

	routers := httprouters.NewRouter(
		log,
		normalizer,
		draftService,
		uploadService,
		galleryService,
		registry,
		inquiryService,
	)

	server := httpapp.New(log, cfg.HTTP.Host, cfg.HTTP.Port, routers)

	return &App{
		HTTPServer: server,
	}
}
