package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nghiaphan04/quynh-anh-bio/app/repository"
	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/database"
	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/middleware"
	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/oauth"
	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// repositories back every controller, wire them before any route fires
	repository.InitializeFactory(database.GetDB())

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerPublicRoutes(app)
	h.registerCSRFProtectedRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func loggedInMiddleware(c *fiber.Ctx) error {
	// UserContextMiddleware already set all user context, nothing to add here.
	return c.Next()
}
