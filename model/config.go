package model

import "time"

// Config 对应于 config.yaml 的顶级结构
type Config struct {
	Token      string     `mapstructure:"TOKEN"`
	Commands   Commands   `mapstructure:"commands"`
	Channels   Channels   `mapstructure:"channels"`
	Moderation Moderation `mapstructure:"moderation"`
	Limits     Limits     `mapstructure:"limits"`
	Session    Session    `mapstructure:"session"`
	Links      Links      `mapstructure:"links"`
	Filter     Filter     `mapstructure:"filter"`
	Catalog    Catalog    `mapstructure:"catalog"`
	Storage    Storage    `mapstructure:"storage"`
	Log        Log        `mapstructure:"log"`
	Health     Health     `mapstructure:"health"`
	Outbound   Outbound   `mapstructure:"outbound"`
}

// Commands 对应 "commands" 部分
type Commands struct {
	AllowGuilds []string `mapstructure:"allowguilds"`
	Auth        Auth     `mapstructure:"auth"`
}

// Auth 对应 "auth" 部分。Developers 和持有 AdminRoles 的成员都视为审核员。
type Auth struct {
	Developers []string `mapstructure:"developers"`
	AdminRoles []string `mapstructure:"admin_roles"`
}

// Channels 对应 "channels" 部分
type Channels struct {
	ReviewChannelID  string `mapstructure:"review_channel_id"`
	PublishChannelID string `mapstructure:"publish_channel_id"`
	ArchiveChannelID string `mapstructure:"archive_channel_id"`
}

// Moderation 对应 "moderation" 部分
type Moderation struct {
	StrikeCeiling int           `mapstructure:"strike_ceiling"`
	PendingTTL    time.Duration `mapstructure:"pending_ttl"`
}

// Limits holds the per-user submission window and input length rules.
type Limits struct {
	ReviewsPerWindow int           `mapstructure:"reviews_per_window"`
	Window           time.Duration `mapstructure:"window"`
	MinPartyLen      int           `mapstructure:"min_party_len"`
	MinBodyLen       int           `mapstructure:"min_body_len"`
	SubjectsPerPage  int           `mapstructure:"subjects_per_page"`
}

type Session struct {
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

// Links controls how follow-up links on published posts are rendered.
// ResumeURL is a format string receiving "add_<token>"; empty means the
// post carries a start button instead of a URL.
type Links struct {
	ResumeURL string        `mapstructure:"resume_url"`
	ResumeTTL time.Duration `mapstructure:"resume_ttl"`
}

type Filter struct {
	ExtraWords []string `mapstructure:"extra_words"`
}

type Catalog struct {
	Path string `mapstructure:"path"`
}

// Storage 选择持久化后端: "sqlite" 或 "redis"
type Storage struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
	RedisURL   string `mapstructure:"redis_url"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Health struct {
	Addr string `mapstructure:"addr"`
}

// Outbound paces calls to the chat platform.
type Outbound struct {
	PerSecond float64 `mapstructure:"per_second"`
	Burst     int     `mapstructure:"burst"`
}
