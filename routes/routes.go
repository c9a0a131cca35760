package routes

import (
	"github.com/chenhan1218/BestBite/app"
	"github.com/chenhan1218/BestBite/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	foodCtl := controllers.NewFoodController(s)
	recogCtl := controllers.NewRecognizeController(s)

	// 复用的中间件
	userMW := app.UserRequired()
	limitMW := app.RateLimiter(a.RDB)

	// ------------------------------
	// 库存 CRUD + 同步
	// ------------------------------
	foods := r.Group("/api/foods", limitMW, userMW)
	{
		foods.GET("", foodCtl.List) // ?status=red|yellow|green
		foods.POST("", foodCtl.Create)
		foods.PUT("/:id", foodCtl.Update)
		foods.DELETE("/:id", foodCtl.Delete)
		foods.POST("/refresh", foodCtl.Refresh)
		foods.POST("/sync", foodCtl.SyncLocal)
		foods.GET("/stats", foodCtl.Stats)
	}

	// ------------------------------
	// 识别（外部分类器，未配置时返回 503）
	// ------------------------------
	api := r.Group("/api", limitMW, userMW)
	{
		api.POST("/recognize", recogCtl.Recognize)
	}
}
