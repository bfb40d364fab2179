package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/shramba/internal/dedup"
	"github.com/erazemk/shramba/internal/model"
)

// NewRouter creates the API router with all endpoints registered. Every
// authenticated route is scoped to the account in the caller's token.
func NewRouter(db *sql.DB, jwtSecret string, engine *dedup.Engine, tokenTTL time.Duration) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret, TokenTTL: tokenTTL}
	usersHandler := &UsersHandler{DB: db}
	storesHandler := &StoresHandler{DB: db}
	suppliersHandler := &SuppliersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db, Engine: engine}
	duplicatesHandler := &DuplicatesHandler{DB: db, Engine: engine}
	recipesHandler := &RecipesHandler{DB: db}
	stockHandler := &StockHandler{DB: db}
	notificationsHandler := &NotificationsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// read is open to every role; manage needs manager+; admin is admin only.
	read := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	manage := func(h http.HandlerFunc) http.Handler { return authMW(requireManager(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", read(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", read(authHandler.Logout))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Stores and categories.
	mux.Handle("GET /api/stores", read(storesHandler.List))
	mux.Handle("POST /api/stores", manage(storesHandler.Create))
	mux.Handle("GET /api/stores/{id}", read(storesHandler.Get))
	mux.Handle("PUT /api/stores/{id}", manage(storesHandler.Update))
	mux.Handle("DELETE /api/stores/{id}", manage(storesHandler.Delete))
	mux.Handle("GET /api/categories", read(storesHandler.ListCategories))
	mux.Handle("POST /api/categories", manage(storesHandler.CreateCategory))
	mux.Handle("DELETE /api/categories/{id}", manage(storesHandler.DeleteCategory))

	// Suppliers.
	mux.Handle("GET /api/suppliers", read(suppliersHandler.List))
	mux.Handle("POST /api/suppliers", manage(suppliersHandler.Create))
	mux.Handle("GET /api/suppliers/{id}", read(suppliersHandler.Get))
	mux.Handle("PUT /api/suppliers/{id}", manage(suppliersHandler.Update))
	mux.Handle("DELETE /api/suppliers/{id}", manage(suppliersHandler.Delete))
	mux.Handle("POST /api/suppliers/{id}/items", manage(suppliersHandler.LinkItem))
	mux.Handle("DELETE /api/suppliers/{id}/items/{itemID}", manage(suppliersHandler.UnlinkItem))

	// Items. The literal match and merge paths win over {id}.
	mux.Handle("GET /api/items", read(itemsHandler.List))
	mux.Handle("POST /api/items", manage(itemsHandler.Create))
	mux.Handle("POST /api/items/match", read(duplicatesHandler.Match))
	mux.Handle("GET /api/items/merge/preview", manage(duplicatesHandler.Preview))
	mux.Handle("POST /api/items/merge", manage(duplicatesHandler.Merge))
	mux.Handle("GET /api/items/{id}", read(itemsHandler.Get))
	mux.Handle("PUT /api/items/{id}", manage(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", manage(itemsHandler.Delete))
	mux.Handle("PUT /api/items/{id}/image", manage(itemsHandler.UploadImage))
	mux.Handle("GET /api/items/{id}/image", read(itemsHandler.GetImage))
	mux.Handle("GET /api/items/{id}/history", read(itemsHandler.GetHistory))
	mux.Handle("GET /api/items/{id}/duplicates", read(duplicatesHandler.ForItem))

	// Duplicate candidates.
	mux.Handle("GET /api/duplicates", read(duplicatesHandler.List))
	mux.Handle("POST /api/duplicates/{id}/dismiss", manage(duplicatesHandler.Dismiss))

	// Recipes.
	mux.Handle("GET /api/recipes", read(recipesHandler.List))
	mux.Handle("POST /api/recipes", manage(recipesHandler.Create))
	mux.Handle("GET /api/recipes/{id}", read(recipesHandler.Get))
	mux.Handle("PUT /api/recipes/{id}", manage(recipesHandler.Update))
	mux.Handle("DELETE /api/recipes/{id}", manage(recipesHandler.Delete))
	mux.Handle("PUT /api/recipes/{id}/ingredients/{itemID}", manage(recipesHandler.SetIngredient))
	mux.Handle("DELETE /api/recipes/{id}/ingredients/{itemID}", manage(recipesHandler.RemoveIngredient))

	// Stock: every role records movements.
	mux.Handle("GET /api/stock", read(stockHandler.Levels))
	mux.Handle("GET /api/stock/alerts", read(stockHandler.Alerts))
	mux.Handle("GET /api/stock/movements", read(stockHandler.ListMovements))
	mux.Handle("POST /api/stock/movements", read(stockHandler.RecordMovement))
	mux.Handle("POST /api/stock/entries", read(stockHandler.RecordEntry))
	mux.Handle("POST /api/stock/transfers", read(stockHandler.Transfer))

	// Notifications.
	mux.Handle("GET /api/notifications", read(notificationsHandler.List))
	mux.Handle("POST /api/notifications/{id}/read", read(notificationsHandler.MarkRead))

	return mux
}
