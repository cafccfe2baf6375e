package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/nghiaphan04/quynh-anh-bio/app/controllers"
	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())

	// Profile document: read is public, write is admin-only
	api.Get("/profile", controllers.HandleAPIProfileGet)
	api.Post("/profile", middleware.RequireAPIAdminAuth, controllers.HandleAPIProfilePost)

	// TikTok OAuth + sync. Connect and callback must stay reachable without a
	// session: the popup carries no app cookies through TikTok's redirect.
	// The token cookie itself gates user and sync.
	tiktok := api.Group("/tiktok")
	tiktok.Get("/connect", controllers.HandleTikTokConnect)
	tiktok.Get("/callback", controllers.HandleTikTokCallback)
	tiktok.Get("/user", controllers.HandleTikTokUser)
	tiktok.Post("/sync", middleware.RequireAPIAdminAuth, controllers.HandleTikTokSync)

	// oEmbed proxy for the public video grid
	api.Get("/oembed", controllers.HandleAPIOEmbed)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
