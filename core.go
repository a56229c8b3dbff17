package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/EasterCompany/dex-meetup-service/utils"
	"github.com/redis/go-redis/v9"
)

const healthInterval = 5 * time.Second

// RunCoreLogic keeps the service health in step with its Redis connection
// until ctx is cancelled.
func RunCoreLogic(ctx context.Context, rdb *redis.Client) error {
	if err := checkRedis(ctx, rdb); err != nil {
		utils.SetHealthStatus(utils.HealthError, "Failed to reach Redis: "+err.Error())
		return err
	}

	utils.SetHealthStatus(utils.HealthOK, "Service is running normally")
	log.Println("Core Logic: Initialization complete, service is healthy")

	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Core Logic: Shutdown signal received")
			utils.SetHealthStatus(utils.HealthShuttingDown, "Core logic is shutting down")
			return nil

		case <-ticker.C:
			if err := checkRedis(ctx, rdb); err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("Core Logic: Redis check failed: %v", err)
				utils.SetHealthStatus(utils.HealthDegraded, "Redis unreachable: "+err.Error())
			} else {
				utils.SetHealthStatus(utils.HealthOK, "Service is running normally")
			}
		}
	}
}

func checkRedis(ctx context.Context, rdb *redis.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
