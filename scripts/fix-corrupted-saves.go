package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/repositories/storage"
)

func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	version := os.Getenv("STORAGE_VERSION")
	if version == "" {
		version = storage.DefaultVersion
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	prefix := storage.VersionPrefix(version)
	fmt.Println("Connected to Redis:", redisURL)
	fmt.Printf("Scanning %s* for corrupted saves...\n", prefix)

	iter := client.Scan(ctx, 0, prefix+"*", 0).Iterator()

	var corruptedKeys []string
	var checkedCount int

	for iter.Next(ctx) {
		key := iter.Val()

		var check func(string) error
		switch {
		case strings.HasSuffix(key, ":"+storage.KeyCharacters):
			check = checkCharacters
		case strings.HasSuffix(key, ":"+storage.KeyInventory):
			check = checkInventory
		default:
			continue
		}
		checkedCount++

		data, err := client.Get(ctx, key).Result()
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", key, err)
			continue
		}

		if err := check(data); err != nil {
			fmt.Printf("✗ %s: %v\n", key, err)
			corruptedKeys = append(corruptedKeys, key)
		}
	}

	if err := iter.Err(); err != nil {
		log.Fatal("Error during scan:", err)
	}

	fmt.Printf("\nChecked %d keys, found %d corrupted entries\n", checkedCount, len(corruptedKeys))

	if len(corruptedKeys) == 0 {
		fmt.Println("No corrupted data found!")
		return
	}

	fmt.Println("\nCorrupted keys:")
	for _, key := range corruptedKeys {
		fmt.Printf("  - %s\n", key)
	}

	fmt.Print("\nDo you want to DELETE these corrupted entries? (yes/no): ")
	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		response = ""
	}

	if response == "yes" {
		for _, key := range corruptedKeys {
			if err := client.Del(ctx, key).Err(); err != nil {
				fmt.Printf("Failed to delete %s: %v\n", key, err)
			} else {
				fmt.Printf("Deleted %s\n", key)
			}
		}
		fmt.Println("\nCleanup complete!")
	} else {
		fmt.Println("Aborted - no changes made")
	}
}

// checkCharacters accepts legacy equipment blocks; the repository upgrades
// those on load. Anything it cannot decode at all is corrupted.
func checkCharacters(data string) error {
	var chars []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &chars); err != nil {
		return fmt.Errorf("not a character list: %w", err)
	}
	for i, c := range chars {
		var id string
		if err := json.Unmarshal(c["id"], &id); err != nil || id == "" {
			return fmt.Errorf("character %d has no id", i)
		}
		var equipment map[string]json.RawMessage
		if raw, ok := c["equipment"]; ok && string(raw) != "null" {
			if err := json.Unmarshal(raw, &equipment); err != nil {
				return fmt.Errorf("character %s has a malformed equipment block", id)
			}
		}
	}
	return nil
}

func checkInventory(data string) error {
	var items superpet.Inventory
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return fmt.Errorf("not an inventory: %w", err)
	}
	for i, item := range items {
		if item.Item.ID == "" {
			return fmt.Errorf("inventory entry %d has no item id", i)
		}
	}
	return nil
}
