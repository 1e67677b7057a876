package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Postgres PostgresConfig `mapstructure:"postgres"` // Postgres配置
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
	Tracing  TracingConfig  `mapstructure:"tracing"`  // 请求追踪配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host           string `mapstructure:"host"`             // 监听地址
	Port           int    `mapstructure:"port"`             // 服务端口
	Mode           string `mapstructure:"mode"`             // Gin运行模式：debug/release/test
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"` // 批量导入请求体上限

	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"` // 为空时允许所有来源
}

// Addr gin 监听地址
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// PostgresConfig Postgres数据库配置
type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	DSN             string        `mapstructure:"dsn"`               // 非空时优先于上面的字段
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
	Logging         bool          `mapstructure:"logging"`           // 是否输出 SQL 日志
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // logrus 级别：debug/info/warn/error
	Format string `mapstructure:"format"` // text/json
}

// TracingConfig 请求追踪配置
type TracingConfig struct {
	Header string `mapstructure:"header"` // 请求 id 所在的请求头
}

var envOverrides = map[string]string{
	"HOST":                 "server.host",
	"PORT":                 "server.port",
	"CORS_ALLOWED_ORIGINS": "server.cors_allowed_origins",
	"POSTGRES_HOST":        "postgres.host",
	"POSTGRES_PORT":        "postgres.port",
	"POSTGRES_DB":          "postgres.database",
	"POSTGRES_USER":        "postgres.user",
	"POSTGRES_PASSWORD":    "postgres.password",
	"POSTGRES_DSN":         "postgres.dsn",
	"LOG_LEVEL":            "log.level",
	"LOG_FORMAT":           "log.format",
	"TRACING_HEADER":       "tracing.header",
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env / 环境变量覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// .env 可不存在
	_ = godotenv.Load()
	return Load("./config")
}

// Load 从指定目录读取 config.yaml；文件不存在时全部使用默认值
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	// 敏感字段：用 env 覆盖（优先级 env > yaml）
	for env, key := range envOverrides {
		if val, ok := os.LookupEnv(env); ok && val != "" {
			v.Set(key, val)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.max_upload_bytes", 100<<20)
	v.SetDefault("server.cors_allowed_origins", []string{})

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.database", "fcp_mpdp_backend")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 20)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("tracing.header", "x-cdp-request-id")
}

// DSNString 连接串；配置了 dsn 时直接返回
func (p *PostgresConfig) DSNString() string {
	if p.DSN != "" {
		return p.DSN
	}
	return p.dsnFor(p.Database)
}

// AdminDSNString 连接 postgres 管理库，用于首次启动时建库
func (p *PostgresConfig) AdminDSNString() string {
	if p.DSN != "" {
		u, err := url.Parse(p.DSN)
		if err == nil && u.Scheme != "" {
			u.Path = "/postgres"
			return u.String()
		}
	}
	return p.dsnFor("postgres")
}

// DatabaseName 实际连接的库名（dsn 优先）
func (p *PostgresConfig) DatabaseName() string {
	if p.DSN != "" {
		if u, err := url.Parse(p.DSN); err == nil && len(u.Path) > 1 {
			return u.Path[1:]
		}
	}
	return p.Database
}

func (p *PostgresConfig) dsnFor(database string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:   "/" + database,
	}
	if p.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {p.SSLMode}}.Encode()
	}
	return u.String()
}

// GetGORMConfig 获取 GORM 配置，logging 关闭时静默 SQL 日志
func (p *PostgresConfig) GetGORMConfig() *gorm.Config {
	level := logger.Silent
	if p.Logging {
		level = logger.Info
	}
	return &gorm.Config{Logger: logger.Default.LogMode(level)}
}
