package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	OTP       OTPConfig
	Recaptcha RecaptchaConfig
	Pricing   PricingConfig
	Media     MediaConfig
	CORS      CORSConfig
	AuthRate  AuthRateLimitConfig
	Features  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPPY_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPPY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPPY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPPY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPPY_DB_DSN"`
	Driver string `envconfig:"SHOPPY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPPY_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPPY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPPY_DB_USER"`
	LegacyPassword string `envconfig:"SHOPPY_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPPY_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPPY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPPY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPPY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPPY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPPY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPPY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHOPPY_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPPY_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPPY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPPY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPPY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPPY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPPY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPPY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SHOPPY_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SHOPPY_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SHOPPY_JWT_EXPIRATION_MINUTES" default:"15"`
	RefreshTokenTTLMinutes int    `envconfig:"SHOPPY_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type OTPConfig struct {
	TTL    time.Duration `envconfig:"SHOPPY_OTP_TTL" default:"5m"`
	Digits int           `envconfig:"SHOPPY_OTP_DIGITS" default:"4"`

	ArgonMemoryKB    int `envconfig:"SHOPPY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOPPY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOPPY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOPPY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOPPY_ARGON_KEY_LEN" default:"32"`
}

type RecaptchaConfig struct {
	SecretKey string        `envconfig:"SHOPPY_RECAPTCHA_SECRET_KEY"`
	VerifyURL string        `envconfig:"SHOPPY_RECAPTCHA_VERIFY_URL" default:"https://www.google.com/recaptcha/api/siteverify"`
	Timeout   time.Duration `envconfig:"SHOPPY_RECAPTCHA_TIMEOUT" default:"5s"`
}

// Enabled reports whether recaptcha verification should run. An empty secret
// disables the check for local development.
func (r RecaptchaConfig) Enabled() bool {
	return strings.TrimSpace(r.SecretKey) != ""
}

// PricingConfig replaces the mutable site-settings row the storefront kept
// payment-gateway parameters in. Loaded once at process start and passed by
// reference into the pricing engine.
type PricingConfig struct {
	PaymentGatewayChargePct string `envconfig:"SHOPPY_PG_CHARGE_PCT" default:"2"`
	MinimumTotalFloor       string `envconfig:"SHOPPY_MINIMUM_TOTAL_FLOOR" default:"1"`
	CollectFromCustomer     bool   `envconfig:"SHOPPY_PG_COLLECT_FROM_CUSTOMER" default:"true"`
}

type MediaConfig struct {
	BaseURL string `envconfig:"SHOPPY_MEDIA_BASE_URL" default:"/media/"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SHOPPY_CORS_ORIGINS" default:"http://localhost:3000"`
}

type AuthRateLimitConfig struct {
	OTPWindow       time.Duration `envconfig:"SHOPPY_AUTH_RATE_LIMIT_OTP_WINDOW" default:"1m"`
	OTPPhoneLimit   int           `envconfig:"SHOPPY_AUTH_RATE_LIMIT_OTP_PHONE_LIMIT" default:"3"`
	OTPIPLimit      int           `envconfig:"SHOPPY_AUTH_RATE_LIMIT_OTP_IP_LIMIT" default:"20"`
	LoginWindow     time.Duration `envconfig:"SHOPPY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginPhoneLimit int           `envconfig:"SHOPPY_AUTH_RATE_LIMIT_LOGIN_PHONE_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"SHOPPY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHOPPY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
