package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"quiz_stats_backend/internal/config"
	"quiz_stats_backend/internal/model"

	"gorm.io/gorm"
)

// memCache keeps JSON encoded values like the redis cache does.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deletes []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	data, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = data
	c.mu.Unlock()
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.deletes = append(c.deletes, k)
	}
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

type published struct {
	Type    string
	Payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{Type: eventType, Payload: payload})
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testConfig() *config.Config {
	return &config.Config{
		Levels: map[string]config.LevelConfig{
			"beginner":     {Label: "Beginner", Free: true},
			"intermediate": {Free: false},
		},
		Badges: config.BadgesConfig{
			MinQuizzesForSuccessRate: 20,
			Completion: config.BadgeFamilyConfig{
				Enabled:    true,
				Thresholds: []float64{5, 10, 20},
				Names:      []string{"Bronze", "Silver", "Gold"},
				Images:     []string{"badges/bronze.png", "badges/silver.png", "badges/gold.png"},
			},
			SuccessRate: config.BadgeFamilyConfig{
				Enabled:    true,
				Thresholds: []float64{70, 85, 95},
				Names:      []string{"Sharp", "Expert", "Master"},
				Images:     []string{"badges/sharp.png", "badges/expert.png", "badges/master.png"},
			},
		},
	}
}

// seedRecord writes an aggregate directly, bypassing the completion math.
func seedRecord(t *testing.T, db *gorm.DB, r model.PerformanceRecord) {
	t.Helper()
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("seed record: %v", err)
	}
}
