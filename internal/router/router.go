package router

import (
	"finteach/internal/chat"
	"finteach/internal/config"
	"finteach/internal/handler"
	"finteach/internal/logger"
	"finteach/internal/middleware"
	"finteach/internal/service"
	"finteach/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// apiPrefixes are the mount points of the JSON API. The web frontend calls
// the /accounts/api form.
var apiPrefixes = []string{"/api", "/accounts/api"}

// SetupRouter configures the gin engine with every API route.
func SetupRouter(cfg *config.Config, db *gorm.DB, log *zap.Logger) (*gin.Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	if err := util.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(logger.GinMiddleware(log), logger.Recovery(log))

	r.GET("/healthz", handler.Healthz(func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	}))

	authHandler := handler.NewAuthHandler(service.NewAuthService(db, cfg.JWT, 0))
	ledgerHandler := handler.NewLedgerHandler(service.NewLedgerService(db))
	chatHandler := handler.NewChatHandler(chat.NewRelay(cfg.Chat, log))
	requireAuth := middleware.AuthMiddleware(cfg.JWT.Secret, db)

	for _, prefix := range apiPrefixes {
		api := r.Group(prefix)

		// public
		api.POST("/register/", authHandler.Register)
		api.POST("/token/", authHandler.Token)
		api.POST("/token/refresh/", authHandler.Refresh)
		api.POST("/token/revoke/", authHandler.Revoke)

		protected := api.Group("")
		protected.Use(requireAuth)

		protected.GET("/user/", handler.GetUser)
		protected.PATCH("/user/", authHandler.UpdateProfile)
		protected.POST("/user/password/", authHandler.ChangePassword)
		protected.POST("/ai-chat/", chatHandler.Chat)

		protected.GET("/dashboard/", ledgerHandler.Dashboard)
		protected.POST("/transaction/", ledgerHandler.Transaction)
		protected.PATCH("/budget/", ledgerHandler.UpdateBudget)

		protected.GET("/goals/", ledgerHandler.ListGoals)
		protected.POST("/goals/", ledgerHandler.CreateGoal)
		protected.PATCH("/goals/:id/", ledgerHandler.EditGoal)
		protected.DELETE("/goals/:id/delete/", ledgerHandler.DeleteGoal)

		protected.GET("/activity/", ledgerHandler.ListActivity)
		protected.GET("/activity/export/csv", ledgerHandler.ExportCSV)
		protected.GET("/activity/export/xlsx", ledgerHandler.ExportXLSX)
	}

	return r, nil
}
