// Package config loads config.yaml, .env and REVIEWBOT_* environment
// variables into model.Config.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "REVIEWBOT"

// Default 返回未配置时使用的默认值
func Default() model.Config {
	return model.Config{
		Moderation: model.Moderation{
			StrikeCeiling: 3,
			PendingTTL:    30 * 24 * time.Hour,
		},
		Limits: model.Limits{
			ReviewsPerWindow: 5,
			Window:           time.Hour,
			MinPartyLen:      3,
			MinBodyLen:       30,
			SubjectsPerPage:  6,
		},
		Session: model.Session{IdleTTL: 24 * time.Hour},
		Links:   model.Links{ResumeTTL: 180 * 24 * time.Hour},
		Storage: model.Storage{Driver: "sqlite", SQLitePath: "./data/reviews.db"},
		Log:     model.Log{Level: "info", Format: "text"},
		Health:  model.Health{Addr: ":50051"},
		Outbound: model.Outbound{
			PerSecond: 5,
			Burst:     5,
		},
	}
}

// Load 读取配置文件。path 为空时在当前目录查找 config.yaml，找不到文件时只使用默认值和环境变量。
func Load(path string) (model.Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")

	def := Default()
	v.SetDefault("token", "")
	v.SetDefault("commands.allowguilds", []string{})
	v.SetDefault("commands.auth.developers", []string{})
	v.SetDefault("commands.auth.admin_roles", []string{})
	v.SetDefault("channels.review_channel_id", "")
	v.SetDefault("channels.publish_channel_id", "")
	v.SetDefault("channels.archive_channel_id", "")
	v.SetDefault("moderation.strike_ceiling", def.Moderation.StrikeCeiling)
	v.SetDefault("moderation.pending_ttl", def.Moderation.PendingTTL)
	v.SetDefault("limits.reviews_per_window", def.Limits.ReviewsPerWindow)
	v.SetDefault("limits.window", def.Limits.Window)
	v.SetDefault("limits.min_party_len", def.Limits.MinPartyLen)
	v.SetDefault("limits.min_body_len", def.Limits.MinBodyLen)
	v.SetDefault("limits.subjects_per_page", def.Limits.SubjectsPerPage)
	v.SetDefault("session.idle_ttl", def.Session.IdleTTL)
	v.SetDefault("links.resume_url", "")
	v.SetDefault("links.resume_ttl", def.Links.ResumeTTL)
	v.SetDefault("filter.extra_words", []string{})
	v.SetDefault("catalog.path", "")
	v.SetDefault("storage.driver", def.Storage.Driver)
	v.SetDefault("storage.sqlite_path", def.Storage.SQLitePath)
	v.SetDefault("storage.redis_url", "")
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("health.addr", def.Health.Addr)
	v.SetDefault("outbound.per_second", def.Outbound.PerSecond)
	v.SetDefault("outbound.burst", def.Outbound.Burst)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return model.Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg model.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return model.Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate 检查运行机器人所必需的配置项
func Validate(cfg model.Config) error {
	var missing []string
	if cfg.Token == "" {
		missing = append(missing, "TOKEN")
	}
	if cfg.Channels.ReviewChannelID == "" {
		missing = append(missing, "channels.review_channel_id")
	}
	if cfg.Channels.PublishChannelID == "" {
		missing = append(missing, "channels.publish_channel_id")
	}
	if len(cfg.Commands.Auth.Developers) == 0 && len(cfg.Commands.Auth.AdminRoles) == 0 {
		missing = append(missing, "commands.auth")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", model.ErrInvalidInput, strings.Join(missing, ", "))
	}

	switch cfg.Storage.Driver {
	case "", "sqlite":
	case "redis":
		if cfg.Storage.RedisURL == "" {
			return fmt.Errorf("%w: storage.redis_url is required for the redis driver", model.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", model.ErrInvalidInput, cfg.Storage.Driver)
	}
	return nil
}
