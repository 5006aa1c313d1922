// file: internals/features/users/auth/route/auth_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authcontroller "athletiq_backend/internals/features/users/auth/controller"
	middlewares "athletiq_backend/internals/middlewares"
	authmw "athletiq_backend/internals/middlewares/auth"
)

func AuthRoutes(app *fiber.App, db *gorm.DB) {
	ctrl := authcontroller.NewAuthController(db)

	grp := app.Group("/api/auth")
	grp.Post("/register", middlewares.RegisterRateLimiter(), ctrl.Register)
	grp.Post("/login", middlewares.LoginRateLimiter(), ctrl.Login)
	grp.Post("/login/google", middlewares.LoginRateLimiter(), ctrl.LoginGoogle)
	grp.Post("/refresh", ctrl.RefreshToken)
	grp.Post("/logout", authmw.AuthMiddleware(db), ctrl.Logout)
}
