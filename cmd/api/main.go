// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
    "bufio"
    "context"
    "encoding/json"
    "fmt"
    "log"
    "net"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/go-chi/chi/v5/middleware"
    "github.com/go-redis/redis/v8"
    "github.com/gorilla/mux"
    "github.com/joho/godotenv"
    "github.com/prometheus/client_golang/prometheus/promhttp"

    "github.com/hyking/hyking-backend/internal/activity"
    "github.com/hyking/hyking-backend/internal/assistant"
    "github.com/hyking/hyking-backend/internal/auth"
    "github.com/hyking/hyking-backend/internal/common/database"
    "github.com/hyking/hyking-backend/internal/config"
    "github.com/hyking/hyking-backend/internal/grouping"
    "github.com/hyking/hyking-backend/internal/matching"
    "github.com/hyking/hyking-backend/internal/messaging"
    "github.com/hyking/hyking-backend/internal/music"
    "github.com/hyking/hyking-backend/internal/notification"
    "github.com/hyking/hyking-backend/internal/profile"
)

var startTime = time.Now()

func main() {
    log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

    log.Println("========================================")
    log.Println("🥾 Starting Hyking API")
    log.Println("========================================")

    // 1. Load environment variables
    if err := godotenv.Load(); err != nil {
        log.Printf("⚠️  No .env file found (%v), using environment variables", err)
    }

    // 2. Load and validate configuration
    cfg := config.Load()
    if err := cfg.Validate(); err != nil {
        log.Fatal("❌ Configuration validation failed: ", err)
    }
    log.Printf("✅ Configuration loaded (%s)", cfg.Environment)

    ctx, stop := context.WithCancel(context.Background())
    defer stop()

    // 3. Connect to PostgreSQL
    log.Println("🗄️  Connecting to PostgreSQL...")
    db, err := database.NewPostgresDBFromURL(ctx, cfg.DatabaseURL, nil)
    if err != nil {
        log.Fatal("❌ Failed to connect to PostgreSQL: ", err)
    }
    defer db.Close()
    log.Println("✅ Connected to PostgreSQL")

    // 4. Connect to Redis (optional)
    var redisClient *redis.Client
    if cfg.RedisURL != "" {
        redisClient, err = database.NewRedisClientFromURL(ctx, cfg.RedisURL)
        if err != nil {
            log.Printf("⚠️  %v, continuing without Redis", err)
            redisClient = nil
        } else {
            defer redisClient.Close()
            log.Println("✅ Connected to Redis")
        }
    } else {
        log.Println("⚠️  Redis URL not configured, chat events stay on this instance")
    }

    // 5. Run database migrations
    log.Println("🔨 Running database migrations...")
    if err := runMigrations(ctx, db); err != nil {
        log.Fatal("❌ Failed to run migrations: ", err)
    }
    log.Println("✅ Database migrations completed")

    authMiddleware := auth.NewMiddleware(cfg.JWTSecret, cfg.JWTIssuer)

    // 6. Profiles
    var images profile.ImageStore
    if cfg.UseS3 {
        s3Store, err := profile.NewS3ImageStore(cfg.S3BucketName, cfg.AWSRegion)
        if err != nil {
            log.Printf("⚠️  Failed to init S3 (%v), using local storage", err)
            images = profile.NewLocalImageStore(cfg.LocalUploadDir, cfg.BaseURL+"/uploads")
        } else {
            images = s3Store
            log.Println("   ✅ Using S3 for profile images")
        }
    } else {
        images = profile.NewLocalImageStore(cfg.LocalUploadDir, cfg.BaseURL+"/uploads")
        log.Println("   ✅ Using local storage for profile images")
    }

    profileService := profile.NewService(profile.NewPostgresRepository(db), images, cfg.GroupLoadConcurrency)
    profileHandler := profile.NewHandler(profileService, cfg.FeedPageSize)
    log.Println("✅ Profile module initialized")

    // 7. Notifications
    emailSender, err := notification.NewEmailSender(cfg.EmailProvider, cfg.SendGridAPIKey, cfg.EmailFrom)
    if err != nil {
        log.Printf("⚠️  Email disabled: %v", err)
    }
    smsSender, err := notification.NewSMSSender(cfg.SMSProvider, cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
    if err != nil {
        log.Printf("⚠️  SMS disabled: %v", err)
    }
    notifier := notification.NewNotifier(profileService, emailSender, smsSender, notification.Options{
        EmailEnabled: cfg.EnableEmailNotifications,
        SMSEnabled:   cfg.EnableSMSNotifications,
        AppURL:       cfg.BaseURL,
    })
    log.Printf("✅ Notifications initialized (email: %s/%t, sms: %s/%t)",
        cfg.EmailProvider, cfg.EnableEmailNotifications, cfg.SMSProvider, cfg.EnableSMSNotifications)

    // 8. Activities and matching
    activityService := activity.NewService(activity.NewPostgresRepository(db))
    activityHandler := activity.NewHandler(activityService, cfg.FeedPageSize)

    matchingService := matching.NewService(matching.NewPostgresRepository(db), profileService, notifier)
    matchingHandler := matching.NewHandler(matchingService)
    log.Println("✅ Matching module initialized")

    // 9. Messaging
    messagingRepo := messaging.NewPostgresRepository(db)
    hub := messaging.NewHub(messagingRepo)
    go hub.Run(ctx)

    var publisher messaging.Publisher = hub
    if redisClient != nil {
        broadcaster := messaging.NewRedisBroadcaster(redisClient, cfg.BroadcastChannel)
        go broadcaster.Subscribe(ctx, hub)
        publisher = broadcaster
        log.Printf("   ✅ Broadcasting chat events on Redis channel %q", cfg.BroadcastChannel)
    }

    messagingService := messaging.NewService(messagingRepo, matchingService, publisher, cfg.AssistantProfileID)
    messagingHandler := messaging.NewHandler(messagingService, hub)
    go messagingHandler.RunMaintenance(ctx)
    log.Println("✅ Messaging module initialized")

    // 10. Group formation
    rules := grouping.RulesFromConfig(cfg)
    groupingService := grouping.NewService(grouping.NewPostgresRepository(db), activityService, rules)
    runner := grouping.NewRunner(groupingService, profileService, matchingService, notifier, rules, cfg.GroupFormationStrategy)
    groupingHandler := grouping.NewHandler(groupingService, runner)

    if cfg.GroupFormationEnabled {
        grouping.NewScheduler(runner, cfg.GroupFormationInterval).Start(ctx)
        log.Printf("   ✅ Group formation scheduled every %s (%s)", cfg.GroupFormationInterval, cfg.GroupFormationStrategy)
    }
    log.Println("✅ Grouping module initialized")

    // 11. Assistant
    var llm assistant.LLM
    if cfg.GeminiAPIKey != "" {
        gemini, err := assistant.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
        if err != nil {
            log.Printf("⚠️  Gemini unavailable (%v), assistant uses keyword rules", err)
        } else {
            defer gemini.Close()
            llm = gemini
            log.Printf("   ✅ Assistant using %s", cfg.GeminiModel)
        }
    } else {
        log.Println("⚠️  GEMINI_API_KEY not set, assistant uses keyword rules")
    }
    assistantHandler := assistant.NewHandler(assistant.NewService(messagingService, activityService, llm))

    // 12. Spotify
    var spotify *music.SpotifyClient
    var states music.StateStore
    if cfg.SpotifyEnabled() && redisClient != nil {
        spotify = music.NewSpotifyClient(music.SpotifyConfig{
            ClientID:     cfg.SpotifyClientID,
            ClientSecret: cfg.SpotifyClientSecret,
            RedirectURL:  cfg.SpotifyRedirectURL,
            TopArtists:   cfg.SpotifyTopArtists,
        })
        states = music.NewRedisStateStore(redisClient)
        log.Println("   ✅ Spotify connect enabled")
    } else {
        log.Println("⚠️  Spotify connect disabled (needs client credentials and Redis)")
    }
    musicHandler := music.NewHandler(music.NewService(spotify, states, profileService))

    // 13. Routes
    router := mux.NewRouter()
    router.Use(middleware.RequestID)
    router.Use(middleware.RealIP)
    router.Use(middleware.Recoverer)
    router.Use(loggingMiddleware)
    router.Use(corsMiddleware)

    if !cfg.UseS3 {
        router.PathPrefix("/uploads/").Handler(
            http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.LocalUploadDir))))
    }

    router.HandleFunc("/health", healthCheck).Methods("GET")
    router.Handle("/metrics", promhttp.Handler()).Methods("GET")
    router.HandleFunc("/api", apiInfo).Methods("GET")

    profile.RegisterRoutes(router, profileHandler, authMiddleware)
    matching.RegisterRoutes(router, matchingHandler, authMiddleware)
    activity.RegisterRoutes(router, activityHandler, authMiddleware)
    grouping.RegisterRoutes(router, groupingHandler, authMiddleware)
    assistant.RegisterRoutes(router, assistantHandler, authMiddleware)
    messaging.RegisterRoutes(router, messagingHandler, authMiddleware)
    music.RegisterRoutes(router, musicHandler, authMiddleware)
    log.Println("✅ Routes registered")

    // 14. Start HTTP server
    srv := &http.Server{
        Addr:         fmt.Sprintf(":%s", cfg.Port),
        Handler:      router,
        ReadTimeout:  15 * time.Second,
        WriteTimeout: 30 * time.Second,
        IdleTimeout:  60 * time.Second,
    }

    go func() {
        log.Printf("🚀 Server listening on %s", srv.Addr)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatal("❌ Failed to start server: ", err)
        }
    }()

    quit := make(chan os.Signal, 1)
    signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
    <-quit
    log.Println("⚠️  Shutdown signal received...")

    // Stops the hub, the Redis subscription and the schedulers
    stop()

    shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer cancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        log.Printf("❌ Server forced to shutdown: %v", err)
    }
    log.Println("✅ Server exited gracefully")
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
    response := map[string]interface{}{
        "status":    "healthy",
        "timestamp": time.Now().Format(time.RFC3339),
        "uptime":    time.Since(startTime).String(),
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusOK)
    json.NewEncoder(w).Encode(response)
}

// apiInfo lists the main endpoint groups
func apiInfo(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusOK)
    json.NewEncoder(w).Encode(map[string]interface{}{
        "name":    "Hyking API",
        "version": "1.0.0",
        "endpoints": map[string]string{
            "health":       "GET /health",
            "metrics":      "GET /metrics",
            "websocket":    "GET /ws",
            "profile":      "/api/v1/profile",
            "users":        "/api/v1/users",
            "matches":      "/api/v1/matches",
            "activities":   "/api/v1/activities",
            "groupmatches": "/api/v1/groupmatches",
            "chats":        "/api/v1/chats",
            "spotify":      "/api/v1/spotify",
        },
    })
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()
        wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

        next.ServeHTTP(wrapped, r)

        log.Printf("← %s %s [%d] %v %s", r.Method, r.RequestURI, wrapped.statusCode,
            time.Since(start), middleware.GetReqID(r.Context()))
    })
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
    http.ResponseWriter
    statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
    rw.statusCode = code
    rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrade through the wrapper
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
    hijacker, ok := rw.ResponseWriter.(http.Hijacker)
    if !ok {
        return nil, nil, fmt.Errorf("response writer does not support hijacking")
    }
    return hijacker.Hijack()
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Access-Control-Allow-Origin", "*")
        w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
        w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

        if r.Method == http.MethodOptions {
            w.WriteHeader(http.StatusOK)
            return
        }

        next.ServeHTTP(w, r)
    })
}
