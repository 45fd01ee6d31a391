package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"finobs/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Everything
// under the session group requires a valid bearer token; authMW is the
// middleware that enforces it.
func RegisterRoutes(app *fiber.App, db *sql.DB, authSvc service.AuthService, dashSvc service.DashboardService, authMW fiber.Handler) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/auth/register", Register(authSvc))
	app.Post("/auth/login", Login(authSvc))

	// Session-gated surface. The middleware injects the session into the
	// request context; handlers never read identity from the URL.
	app.Get("/profile", authMW, GetProfile(dashSvc))
	app.Patch("/profile", authMW, UpdateProfile(dashSvc))
	app.Get("/documents", authMW, ListDocuments(dashSvc))
	app.Post("/documents", authMW, UploadDocument(dashSvc))
	app.Delete("/documents/:id", authMW, DeleteDocument(dashSvc))
	app.Get("/documents/:id/url", authMW, DocumentURL(dashSvc))
}
