package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/quizhub-api/internal/config"
	"github.com/yourusername/quizhub-api/internal/handler"
	"github.com/yourusername/quizhub-api/internal/middleware"
	pgRepo "github.com/yourusername/quizhub-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/quizhub-api/internal/repository/redis"
	"github.com/yourusername/quizhub-api/internal/service"
	"github.com/yourusername/quizhub-api/internal/service/gamemanager"
	"github.com/yourusername/quizhub-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis с использованием унифицированной конфигурации
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	sessionRepo := pgRepo.NewSessionRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	groupRepo := pgRepo.NewGroupRepo(db)
	playerRepo := pgRepo.NewPlayerRepo(db)
	answerRepo := pgRepo.NewAnswerRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// --- Конфигурация игрового цикла ---
	gameConfig := gamemanager.DefaultConfig()
	if cfg.Game.MaxPlayersDefault > 0 {
		gameConfig.DefaultMaxPlayers = cfg.Game.MaxPlayersDefault
	}
	if cfg.Game.CASMaxRetries > 0 {
		gameConfig.MaxRetries = cfg.Game.CASMaxRetries
	}
	if cfg.Game.ScoreboardTTLHrs > 0 {
		ttl := time.Duration(cfg.Game.ScoreboardTTLHrs) * time.Hour
		gameConfig.ScoreboardTTL = ttl
		gameConfig.LobbyTTL = ttl
		gameConfig.RoundFlagTTL = ttl
	}
	if cfg.Facts.MaxTopics > 0 {
		gameConfig.MaxFactTopics = cfg.Facts.MaxTopics
	}

	// Клиент сервиса фактов (nil при пустом base URL - факты отключены)
	var factGenerator service.FactGenerator
	if factService := service.NewFactService(cfg.Facts); factService != nil {
		factGenerator = factService
	}

	// Инициализируем сервисы
	gameManager := service.NewGameManager(sessionRepo, questionRepo, answerRepo, playerRepo, cacheRepo, factGenerator, gameConfig)
	sessionService := service.NewSessionService(sessionRepo, groupRepo, gameConfig)
	groupService := service.NewGroupService(groupRepo, questionRepo, sessionRepo)
	playerService := service.NewPlayerService(playerRepo)
	resultService := service.NewResultService(gameManager, sessionRepo, answerRepo, playerRepo)

	// Инициализируем обработчики
	sessionHandler := handler.NewSessionHandler(sessionService, resultService, gameManager)
	groupHandler := handler.NewGroupHandler(groupService)
	playerHandler := handler.NewPlayerHandler(playerService)

	// Rate limiting на основе Redis
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		// Production: не доверять прокси-заголовкам
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		// Development: доверяем localhost
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8000", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Игроки
		players := api.Group("/players")
		{
			players.POST("/sign-in", rateLimiter.Limit(middleware.SignInRateLimitConfig()), playerHandler.SignIn)

			playerWithID := players.Group("/:id")
			playerWithID.Use(middleware.ExtractUUIDParam("id", "playerID"))
			{
				playerWithID.GET("", playerHandler.GetPlayer)
			}
		}

		// Группы вопросов
		groups := api.Group("/groups")
		{
			groups.GET("", groupHandler.ListGroups)
			groups.POST("", groupHandler.CreateGroup)

			groupWithID := groups.Group("/:id")
			groupWithID.Use(middleware.ExtractUintParam("id", "groupID")) // Применяем middleware
			{
				groupWithID.GET("", groupHandler.GetGroup)
				groupWithID.PUT("", groupHandler.RenameGroup)
				groupWithID.DELETE("", groupHandler.DeleteGroup)
				groupWithID.POST("/questions", groupHandler.AddQuestions)
			}
		}

		// Вопросы (операции по ID вопроса)
		questions := api.Group("/questions/:id")
		questions.Use(middleware.ExtractUintParam("id", "questionID"))
		{
			questions.PUT("", groupHandler.UpdateQuestion)
			questions.DELETE("", groupHandler.DeleteQuestion)
		}

		// Игровые сессии
		sessions := api.Group("/sessions")
		{
			sessions.GET("", sessionHandler.ListSessions)
			sessions.POST("", sessionHandler.CreateSession)

			sessionWithID := sessions.Group("/:id")
			sessionWithID.Use(middleware.ExtractUintParam("id", "sessionID"))
			{
				sessionWithID.GET("", sessionHandler.GetSession)
				sessionWithID.PUT("", sessionHandler.UpdateSession)
				sessionWithID.DELETE("", sessionHandler.DeleteSession)

				// Игровой цикл
				sessionWithID.POST("/join", sessionHandler.JoinSession)
				sessionWithID.POST("/leave", sessionHandler.LeaveSession)
				sessionWithID.POST("/start", sessionHandler.StartSession)
				sessionWithID.POST("/advance", sessionHandler.AdvanceSession)
				sessionWithID.POST("/finish", sessionHandler.FinishSession)
				sessionWithID.POST("/restart", sessionHandler.RestartSession)

				// Состояние для polling-клиентов
				sessionWithID.GET("/state", sessionHandler.GetState)

				// Ответы с защитой от флуда
				sessionWithID.POST("/answers", rateLimiter.Limit(middleware.AnswerRateLimitConfig()), sessionHandler.SubmitAnswer)

				// Результаты
				sessionWithID.GET("/results", sessionHandler.GetResults)
				sessionWithID.GET("/results/export", sessionHandler.ExportResults)

				playerResult := sessionWithID.Group("/results/:playerId")
				{
					playerResult.GET("", sessionHandler.GetPlayerResult)
				}
			}
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// После получения сигнала SIGINT или SIGTERM завершаем работу
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Снимаем таймеры раундов
	gameManager.Shutdown()

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
