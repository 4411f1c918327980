// Package cache provides a short-TTL read cache for hot inventory queries.
// The authoritative state always lives in the store; cached entries are
// invalidated whenever a reservation commit changes them.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cinebook/internal/models"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	TTL      time.Duration
}

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(cfg Config) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: rdb, ttl: cfg.TTL}, nil
}

func inventoryKey(showtimeID string) string {
	return "inventory:" + showtimeID
}

func poolKey(vehicleType string) string {
	return "parking:" + vehicleType
}

// GetInventory returns the cached inventory or (nil, nil) on a miss.
func (c *Cache) GetInventory(ctx context.Context, showtimeID string) (*models.ShowtimeInventory, error) {
	data, err := c.client.Get(ctx, inventoryKey(showtimeID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}

	var inv models.ShowtimeInventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("invalid cached inventory: %w", err)
	}
	return &inv, nil
}

func (c *Cache) SetInventory(ctx context.Context, inv *models.ShowtimeInventory) error {
	data, err := json.Marshal(inv)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, inventoryKey(inv.ID), data, c.ttl).Err()
}

func (c *Cache) InvalidateInventory(ctx context.Context, showtimeID string) error {
	return c.client.Del(ctx, inventoryKey(showtimeID)).Err()
}

// GetPool returns the cached parking pool or (nil, nil) on a miss.
func (c *Cache) GetPool(ctx context.Context, vehicleType string) ([]models.ParkingSlot, error) {
	data, err := c.client.Get(ctx, poolKey(vehicleType)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}

	var slots []models.ParkingSlot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("invalid cached pool: %w", err)
	}
	return slots, nil
}

func (c *Cache) SetPool(ctx context.Context, vehicleType string, slots []models.ParkingSlot) error {
	data, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, poolKey(vehicleType), data, c.ttl).Err()
}

func (c *Cache) InvalidatePool(ctx context.Context, vehicleType string) error {
	return c.client.Del(ctx, poolKey(vehicleType)).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
