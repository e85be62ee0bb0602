package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/pantryplan-backend/api/controllers"
	"github.com/angelmondragon/pantryplan-backend/api/middleware"
	"github.com/angelmondragon/pantryplan-backend/internal/exports"
	"github.com/angelmondragon/pantryplan-backend/internal/ingredients"
	"github.com/angelmondragon/pantryplan-backend/internal/meals"
	"github.com/angelmondragon/pantryplan-backend/internal/pantry"
	"github.com/angelmondragon/pantryplan-backend/internal/recipes"
	"github.com/angelmondragon/pantryplan-backend/internal/shopping"
	"github.com/angelmondragon/pantryplan-backend/pkg/config"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/pantryplan-backend/pkg/redis"
)

// Dependencies are the services mounted by NewRouter. Exports and
// Idempotency may be nil when S3 or redis are not configured.
type Dependencies struct {
	Ingredients ingredients.Service
	Recipes     recipes.Service
	Meals       meals.Service
	Pantry      pantry.Service
	Shopping    shopping.Service
	Exports     exports.Service

	Idempotency pkgredis.IdempotencyStore
	Readiness   map[string]controllers.Pinger
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Readiness, logg))
	})

	servings := cfg.Planner.DefaultServings
	maxDays := cfg.Planner.MaxRangeDays

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(deps.Idempotency, logg))

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", controllers.IngredientsList(deps.Ingredients, logg))
			r.Post("/add", controllers.IngredientsAdd(deps.Ingredients, logg))
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", controllers.RecipesList(deps.Recipes, logg))
			r.Post("/", controllers.RecipeCreate(deps.Recipes, logg))
			r.Get("/{recipeId}", controllers.RecipeGet(deps.Recipes, logg))
			r.Put("/{recipeId}", controllers.RecipeUpdate(deps.Recipes, logg))
			r.Delete("/{recipeId}", controllers.RecipeDelete(deps.Recipes, logg))
			r.Post("/{recipeId}/consume", controllers.RecipeConsume(deps.Pantry, logg))
		})

		r.Route("/meals", func(r chi.Router) {
			r.Get("/", controllers.MealsList(deps.Meals, maxDays, logg))
			r.Get("/week", controllers.MealsWeek(logg))
			r.Post("/", controllers.MealCreate(deps.Meals, logg))
			r.Delete("/{mealId}", controllers.MealDelete(deps.Meals, logg))
		})

		r.Route("/pantry", func(r chi.Router) {
			r.Get("/", controllers.PantryList(deps.Pantry, logg))
			r.Post("/upsert", controllers.PantryUpsert(deps.Pantry, logg))
			r.Delete("/{pantryItemId}", controllers.PantryDelete(deps.Pantry, logg))
		})

		r.Route("/shopping-list", func(r chi.Router) {
			r.Get("/", controllers.ShoppingList(deps.Shopping, servings, maxDays, logg))
			r.Get("/csv", controllers.ShoppingListCSV(deps.Shopping, servings, maxDays, logg))
			r.Get("/text", controllers.ShoppingListText(deps.Shopping, servings, maxDays, logg))
			r.Post("/commit", controllers.ShoppingListCommit(deps.Shopping, servings, maxDays, logg))
			r.Post("/export", controllers.ShoppingListExport(deps.Exports, servings, maxDays, logg))
		})
	})

	return r
}
