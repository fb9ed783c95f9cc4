package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App      AppSettings      `mapstructure:"app"`
	Postgres PostgresSettings `mapstructure:"postgres"`
	Redis    RedisSettings    `mapstructure:"redis"`
	Kafka    KafkaSettings    `mapstructure:"kafka"`
	JWT      JWTSettings      `mapstructure:"jwt"`
	Argon2   Argon2Settings   `mapstructure:"argon2"`
	Password PasswordSettings `mapstructure:"password"`
	Throttle ThrottleSettings `mapstructure:"throttle"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures the Redis connection backing the login throttle.
type RedisSettings struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	DB             int    `mapstructure:"db"`
	Password       string `mapstructure:"password"`
	TLSEnabled     bool   `mapstructure:"tls_enabled"`
	ThrottlePrefix string `mapstructure:"throttle_prefix"`
}

// KafkaSettings configures the audit event producer. Empty brokers select the
// logging stub publisher.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// JWTSettings configures bearer token issuance. The secret must be at least
// 32 bytes and is supplied externally, never embedded in a build.
type JWTSettings struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// Argon2Settings configures Argon2id password hashing parameters.
type Argon2Settings struct {
	Memory        uint32 `mapstructure:"memory"`
	Iterations    uint32 `mapstructure:"iterations"`
	Parallelism   uint8  `mapstructure:"parallelism"`
	SaltLength    uint32 `mapstructure:"salt_length"`
	KeyLength     uint32 `mapstructure:"key_length"`
	MaxConcurrent int    `mapstructure:"max_concurrent"`
}

// PasswordSettings configures the registration password policy.
type PasswordSettings struct {
	MinLength        int      `mapstructure:"min_length"`
	DenyList         []string `mapstructure:"deny_list"`
	SpecialChars     string   `mapstructure:"special_chars"`
	MinStrengthScore int      `mapstructure:"min_strength_score"`
}

// ThrottleSettings configures brute-force containment windows.
type ThrottleSettings struct {
	AccountMaxFailures int           `mapstructure:"account_max_failures"`
	AccountWindow      time.Duration `mapstructure:"account_window"`
	LockoutDuration    time.Duration `mapstructure:"lockout_duration"`
	AddressMaxAttempts int           `mapstructure:"address_max_attempts"`
	AddressWindow      time.Duration `mapstructure:"address_window"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("PFH")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.throttle_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"jwt.secret",
		"jwt.access_token_ttl",
		"argon2.memory",
		"argon2.iterations",
		"argon2.parallelism",
		"argon2.salt_length",
		"argon2.key_length",
		"argon2.max_concurrent",
		"password.min_length",
		"password.deny_list",
		"password.special_chars",
		"password.min_strength_score",
		"throttle.account_max_failures",
		"throttle.account_window",
		"throttle.lockout_duration",
		"throttle.address_max_attempts",
		"throttle.address_window",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "pfh-user-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "pfh")
	v.SetDefault("postgres.password", "pfh_password")
	v.SetDefault("postgres.database", "pfh_users")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", time.Hour)
	v.SetDefault("postgres.max_conn_idle_time", 30*time.Minute)
	v.SetDefault("postgres.health_check_period", time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.throttle_prefix", "pfh:throttle")

	v.SetDefault("kafka.topic_prefix", "pfh")

	v.SetDefault("jwt.access_token_ttl", 15*time.Minute)

	// OWASP-aligned floors; the hasher refuses weaker values.
	v.SetDefault("argon2.memory", 64*1024)
	v.SetDefault("argon2.iterations", 3)
	v.SetDefault("argon2.parallelism", 2)
	v.SetDefault("argon2.salt_length", 16)
	v.SetDefault("argon2.key_length", 32)
	v.SetDefault("argon2.max_concurrent", 8)

	v.SetDefault("password.min_length", 12)
	v.SetDefault("password.deny_list", defaultDenyList())
	v.SetDefault("password.special_chars", "!@#$%^&*()")
	v.SetDefault("password.min_strength_score", 0)

	v.SetDefault("throttle.account_max_failures", 3)
	v.SetDefault("throttle.account_window", 15*time.Minute)
	v.SetDefault("throttle.lockout_duration", 30*time.Minute)
	v.SetDefault("throttle.address_max_attempts", 10)
	v.SetDefault("throttle.address_window", time.Minute)
}

func defaultDenyList() []string {
	return []string{
		"password1234",
		"iloveyou2020!!",
		"welcome12345!",
		"qwertyuiop123",
		"abc123abc123",
	}
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}
