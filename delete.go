package main

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/EasterCompany/dex-meetup-service/config"
	"github.com/EasterCompany/dex-meetup-service/internal/posts"
)

// DeleteMode runs the post deletion CLI tool
func DeleteMode(cfg *config.Config, patterns []string) error {
	ctx := context.Background()

	log.Println("Connecting to Redis for deletion operation...")
	if err := initializeRedis(ctx, cfg); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer func() {
		if err := RedisClient.Close(); err != nil {
			log.Printf("Failed to close Redis connection: %v", err)
		}
	}()

	log.Printf("Connected to Redis at %s", RedisClient.Options().Addr)
	log.Printf("Deletion patterns: %v", patterns)

	store := posts.NewStore(RedisClient)
	allIDs, err := store.IDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch post IDs: %w", err)
	}

	log.Printf("Found %d total posts in timeline", len(allIDs))
	if len(allIDs) == 0 {
		log.Println("No posts found in database")
		return nil
	}

	matchingIDs := []string{}
	for _, id := range allIDs {
		if matchesAnyPattern(id, patterns) {
			matchingIDs = append(matchingIDs, id)
		}
	}

	if len(matchingIDs) == 0 {
		log.Printf("No posts matched the patterns: %v", patterns)
		return nil
	}

	fmt.Printf("\n⚠️  WARNING: About to delete %d post(s):\n", len(matchingIDs))
	if len(matchingIDs) <= 10 {
		for _, id := range matchingIDs {
			fmt.Printf("  - %s\n", id)
		}
	} else {
		for i := 0; i < 5; i++ {
			fmt.Printf("  - %s\n", matchingIDs[i])
		}
		fmt.Printf("  ... and %d more\n", len(matchingIDs)-5)
	}
	fmt.Printf("\nThis action CANNOT be undone.\n")
	fmt.Printf("Type 'yes' to confirm deletion: ")

	var confirmation string
	_, _ = fmt.Scanln(&confirmation)

	if confirmation != "yes" {
		log.Println("Deletion cancelled by user")
		return nil
	}

	deleted := 0
	for _, id := range matchingIDs {
		if err := store.Delete(ctx, id); err != nil {
			log.Printf("Error deleting post %s: %v", id, err)
			continue
		}
		deleted++
	}

	log.Printf("✓ Successfully deleted %d out of %d posts", deleted, len(matchingIDs))
	return nil
}

// matchesAnyPattern checks if a post ID matches any of the given patterns
func matchesAnyPattern(id string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchesPattern(id, pattern) {
			return true
		}
	}
	return false
}

// matchesPattern converts a glob-style pattern (* and ?) to a regex and
// matches the whole ID.
func matchesPattern(id, pattern string) bool {
	regexPattern := regexp.QuoteMeta(pattern)
	regexPattern = strings.ReplaceAll(regexPattern, `\*`, ".*")
	regexPattern = strings.ReplaceAll(regexPattern, `\?`, ".")
	regexPattern = "^" + regexPattern + "$"

	matched, err := regexp.MatchString(regexPattern, id)
	if err != nil {
		log.Printf("Invalid pattern '%s': %v", pattern, err)
		return false
	}
	return matched
}

// ListPosts shows all posts for deletion selection
func ListPosts(cfg *config.Config) error {
	ctx := context.Background()

	log.Println("Connecting to Redis...")
	if err := initializeRedis(ctx, cfg); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer func() {
		if err := RedisClient.Close(); err != nil {
			log.Printf("Failed to close Redis connection: %v", err)
		}
	}()

	store := posts.NewStore(RedisClient)
	ids, err := store.IDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch post IDs: %w", err)
	}
	list, err := store.List(ctx, len(ids))
	if err != nil {
		return fmt.Errorf("failed to fetch posts: %w", err)
	}
	if len(list) == 0 {
		fmt.Println("No posts found in database")
		return nil
	}

	fmt.Printf("Total posts: %d\n\n", len(list))
	for i, p := range list {
		fmt.Printf("%4d. %s  [%s] %d joined  %q\n", i+1, p.ID, p.AuthorName, len(p.Participants), p.Text)
	}
	return nil
}
