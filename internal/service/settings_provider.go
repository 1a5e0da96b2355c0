package service

import (
	"quiz_stats_backend/internal/config"
	"quiz_stats_backend/internal/model"
	"sort"
	"strings"
	"sync/atomic"
)

// SettingsProvider 提供管理员配置的只读快照
type SettingsProvider interface {
	BadgeConfiguration() model.BadgeConfiguration
	Levels() []model.Level
	Level(key string) (model.Level, bool)
}

type settingsSnapshot struct {
	badges    model.BadgeConfiguration
	levels    []model.Level
	levelsKey map[string]model.Level
}

// ConfigSettingsProvider serves snapshots built from the loaded config. Reload
// swaps the whole snapshot, so readers never see a half-applied change.
type ConfigSettingsProvider struct {
	current atomic.Pointer[settingsSnapshot]
}

func NewConfigSettingsProvider(cfg *config.Config) *ConfigSettingsProvider {
	p := &ConfigSettingsProvider{}
	p.Reload(cfg)
	return p
}

func (p *ConfigSettingsProvider) Reload(cfg *config.Config) {
	p.current.Store(buildSnapshot(cfg))
}

func (p *ConfigSettingsProvider) BadgeConfiguration() model.BadgeConfiguration {
	return p.current.Load().badges
}

func (p *ConfigSettingsProvider) Levels() []model.Level {
	levels := p.current.Load().levels
	out := make([]model.Level, len(levels))
	copy(out, levels)
	return out
}

func (p *ConfigSettingsProvider) Level(key string) (model.Level, bool) {
	lvl, ok := p.current.Load().levelsKey[strings.ToLower(key)]
	return lvl, ok
}

func buildSnapshot(cfg *config.Config) *settingsSnapshot {
	snap := &settingsSnapshot{
		badges: model.BadgeConfiguration{
			Disabled:                 cfg.Badges.Disabled,
			MinQuizzesForSuccessRate: cfg.Badges.MinQuizzesForSuccessRate,
			Completion:               familyFromConfig(cfg.Badges.Completion),
			SuccessRate:              familyFromConfig(cfg.Badges.SuccessRate),
		},
		levelsKey: make(map[string]model.Level, len(cfg.Levels)),
	}

	for key, lc := range cfg.Levels {
		key = strings.ToLower(key)
		lvl := model.Level{Key: key, Label: lc.Label, Free: lc.Free}
		if lvl.Label == "" {
			lvl.Label = capitalize(key)
		}
		snap.levels = append(snap.levels, lvl)
		snap.levelsKey[key] = lvl
	}
	sort.Slice(snap.levels, func(i, j int) bool {
		return snap.levels[i].Key < snap.levels[j].Key
	})

	return snap
}

func familyFromConfig(fc config.BadgeFamilyConfig) model.BadgeFamily {
	return model.BadgeFamily{
		Enabled:    fc.Enabled,
		Thresholds: append([]float64(nil), fc.Thresholds...),
		Names:      append([]string(nil), fc.Names...),
		Images:     append([]string(nil), fc.Images...),
	}
}
