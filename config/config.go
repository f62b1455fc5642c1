// config.go

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 服务器配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Combat   CombatConfig   `mapstructure:"combat"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig 服务器基本配置
type ServerConfig struct {
	GamePort    int    `mapstructure:"game_port"`
	GatewayPort int    `mapstructure:"gateway_port"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	MaxSessions int    `mapstructure:"max_sessions"`
	// 网关每分钟请求上限
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig 持久化后端配置
type StorageConfig struct {
	// Backend 玩家记录存储: redis, postgres, memory
	Backend string `mapstructure:"backend"`
	// History 战斗历史存储: postgres, memory
	History string `mapstructure:"history"`
	// Leaderboard 是否启用Redis排行榜
	Leaderboard bool   `mapstructure:"leaderboard"`
	KeyPrefix   string `mapstructure:"key_prefix"`
}

// CombatConfig 战斗引擎配置
type CombatConfig struct {
	StartSkillPoints int           `mapstructure:"start_skill_points"`
	MaxSkillPoints   int           `mapstructure:"max_skill_points"`
	LogCapacity      int           `mapstructure:"log_capacity"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	SweepInterval    time.Duration `mapstructure:"sweep_interval"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	// BotSecret 机器人前端换取令牌时使用的共享密钥
	BotSecret string `mapstructure:"bot_secret"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig Config
)

// setDefaults 注册默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.game_port", 8081)
	v.SetDefault("server.gateway_port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.max_sessions", 1000)
	v.SetDefault("server.requests_per_minute", 120)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "pixelstorm_rpg")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.history", "memory")
	v.SetDefault("storage.leaderboard", false)
	v.SetDefault("storage.key_prefix", "")

	v.SetDefault("combat.start_skill_points", 3)
	v.SetDefault("combat.max_skill_points", 5)
	v.SetDefault("combat.log_capacity", 12)
	v.SetDefault("combat.idle_timeout", 5*time.Minute)
	v.SetDefault("combat.sweep_interval", 30*time.Second)

	v.SetDefault("auth.issuer", "pixelstorm-rpg")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
}

// Load 从文件和环境变量加载配置，configPath为空时只使用默认值和环境变量
func Load(configPath string) (*Config, error) {
	// .env 不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("无法读取.env文件: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("RPG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("无法读取配置文件: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	GlobalConfig = cfg
	return &cfg, nil
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "redis", "postgres", "memory":
	default:
		return fmt.Errorf("未知的存储后端: %s", c.Storage.Backend)
	}
	switch c.Storage.History {
	case "postgres", "memory":
	default:
		return fmt.Errorf("未知的历史存储: %s", c.Storage.History)
	}
	if c.Combat.MaxSkillPoints <= 0 {
		return fmt.Errorf("max_skill_points 必须大于0")
	}
	if c.Combat.StartSkillPoints < 0 || c.Combat.StartSkillPoints > c.Combat.MaxSkillPoints {
		return fmt.Errorf("start_skill_points 必须在 0 到 %d 之间", c.Combat.MaxSkillPoints)
	}
	if c.Combat.LogCapacity <= 0 {
		return fmt.Errorf("log_capacity 必须大于0")
	}
	return nil
}

// UsesRedis 是否需要Redis连接
func (c *Config) UsesRedis() bool {
	return c.Storage.Backend == "redis" || c.Storage.Leaderboard
}

// UsesPostgres 是否需要PostgreSQL连接
func (c *Config) UsesPostgres() bool {
	return c.Storage.Backend == "postgres" || c.Storage.History == "postgres"
}

// GetDSN 获取PostgreSQL连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetRedisAddr 获取Redis连接地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
