package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"support-system/internal/controllers"
	"support-system/internal/listeners"
	"support-system/internal/repositories"
	"support-system/internal/services"
	"support-system/pkg/config"
	"support-system/pkg/eventbus"
	"support-system/pkg/middleware"
	"support-system/pkg/service"
	"support-system/pkg/websocket"
)

// InitRouter собирает весь граф зависимостей и регистрирует маршруты.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	hub *websocket.Hub,
	bus *eventbus.Bus,
	logger *zap.Logger,
	cfg *config.Config,
) {
	logger.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)

	// --- 1. РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	ticketRepo := repositories.NewTicketRepository(dbConn)
	messageRepo := repositories.NewMessageRepository(dbConn)
	chatRepo := repositories.NewChatRepository(dbConn)
	notificationRepo := repositories.NewNotificationRepository(dbConn)
	categoryRepo := repositories.NewTicketCategoryRepository(dbConn)
	dashboardRepo := repositories.NewDashboardRepository(dbConn)

	// --- 2. СЕРВИСЫ ---
	authService := services.NewAuthService(userRepo, cacheRepo, jwtSvc, logger)
	ticketService := services.NewTicketService(ticketRepo, messageRepo, bus, logger)
	chatService := services.NewChatService(chatRepo, messageRepo, bus, logger)
	notificationService := services.NewNotificationService(notificationRepo, logger)
	categoryService := services.NewTicketCategoryService(categoryRepo, logger)
	dashboardService := services.NewDashboardService(dashboardRepo, logger)
	exportService := services.NewExportService(ticketRepo, userRepo, categoryRepo, &cfg.Export, logger)

	// --- 3. СЛУШАТЕЛИ СОБЫТИЙ ---
	notificationListener := listeners.NewNotificationListener(notificationRepo, hub, logger)
	notificationListener.Subscribe(bus)

	// --- 4. КОНТРОЛЛЕРЫ ---
	authCtrl := controllers.NewAuthController(authService, logger)
	ticketCtrl := controllers.NewTicketController(ticketService, exportService, logger)
	chatCtrl := controllers.NewChatController(chatService, logger)
	notificationCtrl := controllers.NewNotificationController(notificationService, logger)
	categoryCtrl := controllers.NewTicketCategoryController(categoryService, logger)
	dashboardCtrl := controllers.NewDashboardController(dashboardService, logger)
	wsCtrl := controllers.NewWebSocketController(hub, jwtSvc, logger)

	// --- 5. МАРШРУТЫ ---

	// Аутентификация
	authGroup := api.Group("/auth")
	authGroup.POST("/login", authCtrl.Login)
	authGroup.POST("/refresh", authCtrl.Refresh)
	authGroup.POST("/logout", authCtrl.Logout, authMW.Auth)
	authGroup.GET("/me", authCtrl.Me, authMW.Auth)

	// Заявки (клиент)
	tickets := api.Group("/tickets", authMW.Auth)
	tickets.POST("", ticketCtrl.CreateTicket)
	tickets.GET("", ticketCtrl.GetMyTickets)
	tickets.GET("/:id", ticketCtrl.FindMyTicket)
	tickets.POST("/:id/messages", ticketCtrl.AddMessage)

	// Чаты (клиент)
	chat := api.Group("/chat/sessions", authMW.Auth)
	chat.POST("", chatCtrl.StartSession)
	chat.GET("", chatCtrl.GetMySessions)
	chat.GET("/:ref", chatCtrl.FindMySession)
	chat.POST("/:ref/messages", chatCtrl.SendMessage)

	// Категории заявок (справочник доступен всем авторизованным)
	categories := api.Group("/ticket-categories", authMW.Auth)
	categories.GET("", categoryCtrl.GetTicketCategories)
	categories.GET("/:id", categoryCtrl.FindTicketCategory)

	// Админская часть
	admin := api.Group("/admin", authMW.Auth, authMW.AdminOnly)

	adminTickets := admin.Group("/tickets")
	adminTickets.GET("", ticketCtrl.GetTickets)
	adminTickets.GET("/export", ticketCtrl.ExportTickets)
	adminTickets.POST("/bulk", ticketCtrl.BulkUpdateTickets)
	adminTickets.GET("/:id", ticketCtrl.FindTicket)
	adminTickets.PUT("/:id", ticketCtrl.UpdateTicket)
	adminTickets.POST("/:id/messages", ticketCtrl.AddAdminMessage)
	adminTickets.PUT("/:id/assign", ticketCtrl.AssignTicket)
	adminTickets.PUT("/:id/status", ticketCtrl.UpdateTicketStatus)

	adminChat := admin.Group("/chat/sessions")
	adminChat.GET("", chatCtrl.GetSessions)
	adminChat.GET("/:ref", chatCtrl.FindSession)
	adminChat.POST("/:ref/messages", chatCtrl.SendAdminMessage)
	adminChat.POST("/:ref/join", chatCtrl.JoinSession)
	adminChat.POST("/:ref/end", chatCtrl.EndSession)

	adminNotifications := admin.Group("/notifications")
	adminNotifications.GET("", notificationCtrl.GetNotifications)
	adminNotifications.PUT("/read-all", notificationCtrl.MarkAllRead)
	adminNotifications.PUT("/:id/read", notificationCtrl.MarkRead)

	adminDashboard := admin.Group("/dashboard")
	adminDashboard.GET("/stats", dashboardCtrl.GetStats)
	adminDashboard.GET("/resolution", dashboardCtrl.GetResolutionStats)

	adminCategories := admin.Group("/ticket-categories")
	adminCategories.POST("", categoryCtrl.CreateTicketCategory)
	adminCategories.PUT("/:id", categoryCtrl.UpdateTicketCategory)
	adminCategories.DELETE("/:id", categoryCtrl.DeleteTicketCategory)

	// WebSocket для уведомлений админ-панели
	e.GET("/ws", wsCtrl.ServeWs)

	logger.Info("InitRouter: Маршруты зарегистрированы")
}
