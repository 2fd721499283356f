package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mlevkov/go-todo-backend/internal/auth"
	"github.com/mlevkov/go-todo-backend/internal/chat"
	"github.com/mlevkov/go-todo-backend/internal/config"
	v1 "github.com/mlevkov/go-todo-backend/internal/delivery/http/v1"
	"github.com/mlevkov/go-todo-backend/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     httpCfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter) {
	cfg := config.Global()

	tokens := auth.NewTokenIssuer(cfg.JWT.Issuer, []byte(cfg.JWT.SigningKey), cfg.JWT.AccessTokenTTL)
	authService := services.NewAuthService(globalLogger, globalGateway, tokens)
	todoService := services.NewTodoService(globalLogger, globalGateway)
	conversationService := services.NewConversationService(globalLogger, globalGateway)

	// Without an API key the chat client stays nil and the chat service
	// serves degraded responses.
	var chatClient *chat.Client
	if cfg.Chat.APIKey != "" {
		client, err := chat.NewClient(cfg.Chat)
		if err != nil {
			globalLogger.Error().
				Err(err).
				Msg("failed to create chat client")
			panic(err)
		}
		chatClient = client
	} else {
		globalLogger.Warn().Msg("chat api key is not set, serving degraded chat responses")
	}
	chatService := chat.NewService(globalLogger, chatClient, todoService)

	v1Handler := v1.New(
		globalLogger,
		tokens,
		authService,
		todoService,
		conversationService,
		chatService,
	)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Todo API"})
	})

	apiRouter := router.Group("/api")

	authRouter := apiRouter.Group("/auth")
	authRouter.POST("/signup", v1Handler.HandleSignup)
	authRouter.POST("/login", v1Handler.HandleLogin)

	todosRouter := apiRouter.Group("/todos", v1Handler.HandleAuthMiddleware)
	todosRouter.POST("", v1Handler.HandleCreateTodo)
	todosRouter.GET("", v1Handler.HandleGetTodos)
	todosRouter.GET("/:id", v1Handler.HandleGetTodo)
	todosRouter.PUT("/:id", v1Handler.HandleUpdateTodo)
	todosRouter.PATCH("/:id/complete", v1Handler.HandleToggleTodo)
	todosRouter.DELETE("/:id", v1Handler.HandleDeleteTodo)

	apiRouter.POST("/chat", v1Handler.HandleAuthMiddleware, v1Handler.HandleChat)
}
