package router

import (
	"myFoodHub/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupAccountRoutes(api *echo.Group, handler *rest.AccountHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	accounts := api.Group("/accounts")
	accounts.POST("/register", handler.Register)
	accounts.GET("/:id", handler.GetAccount, authRequired)

	admin := api.Group("/admin", authRequired, adminOnly)
	admin.POST("/accounts", handler.Provision)
	admin.DELETE("/accounts/:id", handler.DeleteAccount)
	admin.DELETE("/restaurants/:id", handler.DeleteRestaurant)

	api.GET("/restaurants", handler.ListRestaurants)
}

func SetupLedgerRoutes(api *echo.Group, handler *rest.LedgerHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	api.GET("/accounts/:id/ledger", handler.Entries, authRequired)

	balances := api.Group("/admin/balances", authRequired, adminOnly)
	balances.POST("/:id/credit", handler.Credit)
	balances.POST("/reconcile", handler.Reconcile)
}

func SetupMenuRoutes(api *echo.Group, handler *rest.MenuHandler, authRequired echo.MiddlewareFunc) {
	api.GET("/restaurants/:id/menu", handler.ListMenu)
	api.POST("/restaurants/:id/menu", handler.AddMenuItem, authRequired)
	api.PUT("/menu-items/:id/price", handler.UpdatePrice, authRequired)
}

func SetOrdersRoutes(api *echo.Group, handler *rest.OrdersHandler, authRequired echo.MiddlewareFunc) {
	orders := api.Group("/orders", authRequired)
	orders.POST("", handler.PlaceOrder)
	orders.GET("", handler.ListMyOrders)
	orders.GET("/:id", handler.GetOrder)
	orders.PATCH("/:id/status", handler.UpdateStatus)
	orders.POST("/:id/settle", handler.Settle)
	orders.POST("/:id/ratings", handler.SubmitRating)
	orders.GET("/:id/ratings/me", handler.MyRating)
}
