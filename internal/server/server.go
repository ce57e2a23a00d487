package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/nvalette/threaddit/internal/database"
	"github.com/nvalette/threaddit/internal/handlers"
	"github.com/nvalette/threaddit/internal/middleware"
)

type Server struct {
	db      database.Service
	handler *handlers.Handler
}

// NewServer creates and configures a new server
func NewServer() *http.Server {
	db := database.New()
	handler := handlers.NewHandler(db.GetDB(), clockwork.NewRealClock())

	newServer := &Server{
		db:      db,
		handler: handler,
	}

	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", port)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	r.Use(middleware.RequestID())

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Public reads
		api.GET("/posts", s.handler.Feed.GetFrontPage)
		api.GET("/posts/:id", s.handler.Post.GetPost)
		api.GET("/posts/:id/comments", s.handler.Comment.GetComments)
		api.GET("/subreddits/:name", s.handler.Subreddit.GetSubreddit)
		api.GET("/users/:username", s.handler.User.GetUserProfile)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/me", s.handler.Auth.GetMe)
			protected.GET("/feed", s.handler.Feed.GetHomeFeed)

			// Subreddit protected routes
			protected.POST("/subreddits", s.handler.Subreddit.CreateSubreddit)
			protected.PUT("/subreddits/:name", s.handler.Subreddit.UpdateSubreddit)
			protected.POST("/subreddits/:name/subscribe", s.handler.Subreddit.Subscribe)
			protected.POST("/subreddits/:name/bans", s.handler.Subreddit.BanUser)
			protected.POST("/subreddits/:name/posts", s.handler.Post.CreateSubredditPost)

			// Post protected routes
			protected.PUT("/posts/:id", s.handler.Post.UpdatePost)
			protected.DELETE("/posts/:id", s.handler.Post.DeletePost)
			protected.POST("/posts/:id/vote", s.handler.Post.VotePost)
			protected.POST("/posts/:id/comments", s.handler.Comment.CreateComment)

			// Comment protected routes
			protected.POST("/comments/:commentId/replies", s.handler.Comment.CreateReply)
			protected.POST("/comments/:commentId/vote", s.handler.Comment.VoteComment)
			protected.PUT("/comments/:commentId", s.handler.Comment.UpdateComment)
			protected.DELETE("/comments/:commentId", s.handler.Comment.DeleteComment)

			// User protected routes
			protected.POST("/users/:username/posts", s.handler.User.CreateUserPost)
			protected.POST("/users/:username/follow", s.handler.User.FollowUser)
			protected.DELETE("/users/:username/follow", s.handler.User.UnfollowUser)
			protected.GET("/users/:username/upvoted", s.handler.User.GetUpvoted)
			protected.GET("/users/:username/downvoted", s.handler.User.GetDownvoted)
			protected.DELETE("/users/:username", s.handler.User.DeleteUser)
		}
	}

	return r
}
