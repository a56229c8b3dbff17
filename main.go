package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EasterCompany/dex-meetup-service/config"
	"github.com/EasterCompany/dex-meetup-service/utils"
	"github.com/redis/go-redis/v9"
)

const ServiceName = "dex-meetup-service"

var (
	version   string
	branch    string
	commit    string
	buildDate string
	buildHash string
)

// RedisClient is shared by the server and the maintenance modes.
var RedisClient *redis.Client

func main() {
	// Handle version/help commands first (before flag parsing)
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			utils.SetVersion(version, branch, commit, buildDate, buildHash)
			fmt.Println(utils.GetVersion().Str)
			os.Exit(0)
		case "help", "--help", "-h":
			fmt.Println("Dexter Meetup Service")
			fmt.Println()
			fmt.Println("Usage:")
			fmt.Println("  dex-meetup-service                     Start the meetup service")
			fmt.Println("  dex-meetup-service version             Display version information")
			fmt.Println("  dex-meetup-service -list               List all posts")
			fmt.Println("  dex-meetup-service -delete <pattern>   Delete posts matching pattern")
			os.Exit(0)
		}
	}

	deleteCmd := flag.Bool("delete", false, "Run in delete mode")
	listCmd := flag.Bool("list", false, "List all posts")
	flag.Parse()

	utils.SetVersion(version, branch, commit, buildDate, buildHash)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Could not load configuration: %v", err)
	}

	if *deleteCmd {
		patterns := flag.Args()
		if len(patterns) == 0 {
			fmt.Println("Usage: dex-meetup-service -delete <pattern1> [pattern2] ...")
			fmt.Println("\nExamples:")
			fmt.Println("  dex-meetup-service -delete '*'              # Delete all posts")
			fmt.Println("  dex-meetup-service -delete '1*'             # Delete all starting with 1")
			fmt.Println("\nFirst run with -list to see all post IDs")
			os.Exit(1)
		}
		if err := DeleteMode(cfg, patterns); err != nil {
			log.Fatalf("Delete operation failed: %v", err)
		}
		return
	}

	if *listCmd {
		if err := ListPosts(cfg); err != nil {
			log.Fatalf("List operation failed: %v", err)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Println("Initializing Redis connection...")
	if err := initializeRedis(ctx, cfg); err != nil {
		log.Fatalf("FATAL: Failed to initialize Redis: %v", err)
	}
	defer func() { _ = RedisClient.Close() }()
	log.Println("Redis connected successfully")

	app, err := newApp(ctx, cfg, RedisClient)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	go func() {
		log.Println("Core Logic: Starting...")
		if err := RunCoreLogic(ctx, RedisClient); err != nil {
			log.Printf("Core Logic Error: %v", err)
			cancel()
		}
		log.Println("Core Logic: Stopped")
	}()

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     app.routes(),
		ReadTimeout: 15 * time.Second,
		// Long enough for the slowest model in the fallback chain. The SSE
		// stream clears its own deadline.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		fmt.Printf("Starting %s on :%d\n", ServiceName, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server crashed: %v", err)
		}
	}()

	// Wait for shutdown signal (SIGTERM from systemd or SIGINT from Ctrl+C)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
	case <-ctx.Done():
	}
	log.Println("Shutting down service...")

	utils.SetHealthStatus(utils.HealthShuttingDown, "Service is shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	log.Println("Service exited cleanly")
}

func initializeRedis(ctx context.Context, cfg *config.Config) error {
	client, err := utils.GetRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	RedisClient = client
	return nil
}
