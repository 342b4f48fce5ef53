package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPage        = 0
	defaultPageSize    = 10
	defaultMaxPageSize = 100
	defaultRefreshSpec = "@every 1m"
	defaultHealthSpec  = "@every 15s"
	defaultOpenJobsTTL = 5 * time.Minute
	defaultTxRetries   = 3
	defaultTokenTTL    = 24 * time.Hour
)

// 機密値を上書きする環境変数名です。
const (
	EnvDatabasePassword = "JOBBOARD_DATABASE_PASSWORD"
	EnvJWTSecret        = "JOBBOARD_JWT_SECRET"
	EnvRedisURL         = "JOBBOARD_REDIS_URL"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	Pagination PaginationConfig `yaml:"pagination"`
	Stats      StatsConfig      `yaml:"stats"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig は HTTP / gRPC サーバーに関する設定です。
type ServerConfig struct {
	HTTPAddr    string   `yaml:"http_addr"`
	GRPCAddr    string   `yaml:"grpc_addr"`
	Mode        string   `yaml:"mode"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
	// TxRetries は直列化失敗時に書き込みトランザクションをやり直す回数です。
	TxRetries *int `yaml:"tx_retries"`
}

// RedisConfig はキャッシュ用 Redis の設定です。URL が空の場合キャッシュは無効になります。
type RedisConfig struct {
	URL            string        `yaml:"url"`
	OpenJobsTTL    time.Duration `yaml:"-"`
	OpenJobsTTLRaw string        `yaml:"open_jobs_ttl"`
}

// AuthConfig はベアラートークン検証の設定です。
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	// TokenTTL は登録時に発行するトークンの有効期間です。
	TokenTTL    time.Duration `yaml:"-"`
	TokenTTLRaw string        `yaml:"token_ttl"`
}

// PaginationConfig は検索時のページング既定値です。
type PaginationConfig struct {
	DefaultPage *int `yaml:"default_page"`
	DefaultSize int  `yaml:"default_size"`
	MaxSize     int  `yaml:"max_size"`
}

// StatsConfig は定期ジョブのスケジュールです。
type StatsConfig struct {
	RefreshSpec string `yaml:"refresh_spec"`
	HealthSpec  string `yaml:"health_spec"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Env string `yaml:"env"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvDatabasePassword); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Redis.URL = v
	}
}

func (c *Config) validateAndNormalize() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("config: server.http_addr must be set")
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}

	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Redis.validateAndNormalize(); err != nil {
		return err
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret must be set")
	}
	ttl, err := parseDurationAllowEmpty(c.Auth.TokenTTLRaw)
	if err != nil {
		return fmt.Errorf("config: auth.token_ttl: %w", err)
	}
	if ttl < 0 {
		return fmt.Errorf("config: auth.token_ttl must not be negative")
	}
	if ttl == 0 {
		ttl = defaultTokenTTL
	}
	c.Auth.TokenTTL = ttl
	if err := c.Pagination.validateAndNormalize(); err != nil {
		return err
	}

	if c.Stats.RefreshSpec == "" {
		c.Stats.RefreshSpec = defaultRefreshSpec
	}
	if c.Stats.HealthSpec == "" {
		c.Stats.HealthSpec = defaultHealthSpec
	}
	if c.Log.Env == "" {
		c.Log.Env = "production"
	}

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	if d.TxRetries == nil {
		retries := defaultTxRetries
		d.TxRetries = &retries
	}
	if *d.TxRetries < 0 {
		return fmt.Errorf("config: database.tx_retries must not be negative")
	}

	return nil
}

func (r *RedisConfig) validateAndNormalize() error {
	ttl, err := parseDurationAllowEmpty(r.OpenJobsTTLRaw)
	if err != nil {
		return fmt.Errorf("config: redis.open_jobs_ttl: %w", err)
	}
	if ttl == 0 {
		ttl = defaultOpenJobsTTL
	}
	r.OpenJobsTTL = ttl
	return nil
}

func (p *PaginationConfig) validateAndNormalize() error {
	if p.DefaultPage == nil {
		page := defaultPage
		p.DefaultPage = &page
	}
	if *p.DefaultPage < 0 {
		return fmt.Errorf("config: pagination.default_page must not be negative")
	}
	if p.MaxSize == 0 {
		p.MaxSize = defaultMaxPageSize
	}
	if p.MaxSize < 0 {
		return fmt.Errorf("config: pagination.max_size must be positive")
	}
	if p.DefaultSize == 0 {
		p.DefaultSize = defaultPageSize
	}
	if p.DefaultSize < 0 || p.DefaultSize > p.MaxSize {
		return fmt.Errorf("config: pagination.default_size must be between 1 and %d", p.MaxSize)
	}
	return nil
}

// Page は既定のページ番号を返します。
func (p PaginationConfig) Page() int {
	if p.DefaultPage == nil {
		return defaultPage
	}
	return *p.DefaultPage
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// Retries は書き込みトランザクションの再試行回数を返します。
func (d DatabaseConfig) Retries() int {
	if d.TxRetries == nil {
		return defaultTxRetries
	}
	return *d.TxRetries
}

// DSN は pgx / golang-migrate 用の接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
