package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                         string
		Port                         string
		DebugHost                    string
		ReadTimeout                  time.Duration
		WriteTimeout                 time.Duration
		ShutdownTimeout              time.Duration
		JWTExpirationDelta           time.Duration
		SuperAdminJWTExpirationDelta time.Duration
		JWTRefreshExpirationDelta    time.Duration
		CookieMaxAge                 time.Duration
		CORSAllowOrigins             []string
		BodyLimit                    string
		RateLimitRequests            int
		RateLimitWindow              time.Duration
		MaxUploadSize                int64
	}

	DatabaseConfig struct {
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		MaxIdleConns  int
		MaxOpenConns  int
		LogQueries    bool
	}

	StorageConfig struct {
		Backend    string // local, s3
		LocalDir   string
		PublicURL  string
		S3Bucket   string
		S3Region   string
		S3Endpoint string
	}

	CacheConfig struct {
		RedisURL string
		ThemeTTL time.Duration
	}

	Config struct {
		Env              string
		Build            string
		AppName          string
		Debug            bool
		TestMode         bool
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridAPIKey   string
		RollbarToken     string
		LogLevel         string
		LogConsole       bool // human-readable log lines
		Tracing          bool

		SuperAdminEmail    string
		SuperAdminPassword string

		Server   ServerConfig
		Database DatabaseConfig
		Storage  StorageConfig
		Cache    CacheConfig
	}
)

// Addr returns the host:port the API listens on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// NewConfig loads the configuration for the environment named by $ENV.
// Values come from (lowest to highest priority): defaults, config/.env.<env>, environment variables
// prefixed by the upper-cased env name (eg: DEV_SERVER_PORT).
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", false)
	v.SetDefault("appName", "studman")
	v.SetDefault("secretKey", "")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@studman.io")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", false)
	v.SetDefault("telemetry.tracing", false)
	v.SetDefault("superAdmin.email", "superadmin@system.com")
	v.SetDefault("superAdmin.password", "")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 6*24*time.Hour)
	v.SetDefault("server.superAdminJwtExpirationDelta", 24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server.cookieMaxAge", 7*24*time.Hour)
	v.SetDefault("server.corsAllowOrigins", []string{"*"})
	v.SetDefault("server.bodyLimit", "10M")
	v.SetDefault("server.rateLimit.requests", 100)
	v.SetDefault("server.rateLimit.window", 15*time.Minute)
	v.SetDefault("server.maxUploadSize", int64(6<<20))

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "studman")
	v.SetDefault("database.user", "studman")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.logQueries", false)

	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.localDir", "media")
	v.SetDefault("storage.publicURL", "/media")
	v.SetDefault("storage.s3Bucket", "")
	v.SetDefault("storage.s3Region", "us-east-1")
	v.SetDefault("storage.s3Endpoint", "")

	v.SetDefault("cache.redisURL", "")
	v.SetDefault("cache.themeTTL", 10*time.Minute)

	env := strings.ToLower(os.Getenv("ENV")) // dev (local; default), test, prod
	if env == "" {
		env = "dev"
	}
	v.SetEnvPrefix(strings.ToUpper(env))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+env)
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", strings.ToUpper(env)+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("superAdmin.password", strings.ToUpper(env)+"_SUPERADMIN_PASSWORD", "ADMIN_SIGNUP_CODE")

	conf := &Config{
		Env:                env,
		Build:              os.Getenv("BUILD"),
		AppName:            v.GetString("appName"),
		Debug:              v.GetBool("debug"),
		TestMode:           env == "test",
		SecretKey:          v.GetString("secretKey"),
		FrontendBaseURL:    v.GetString("frontendBaseURL"),
		DefaultFromEmail:   mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		SendgridAPIKey:     v.GetString("sendgridApiKey"),
		RollbarToken:       v.GetString("rollbarToken"),
		LogLevel:           v.GetString("log.level"),
		LogConsole:         v.GetBool("log.console"),
		Tracing:            v.GetBool("telemetry.tracing"),
		SuperAdminEmail:    v.GetString("superAdmin.email"),
		SuperAdminPassword: v.GetString("superAdmin.password"),
		Server: ServerConfig{
			Host:                         v.GetString("server.host"),
			Port:                         v.GetString("server.port"),
			DebugHost:                    v.GetString("server.debugHost"),
			ReadTimeout:                  v.GetDuration("server.readTimeout"),
			WriteTimeout:                 v.GetDuration("server.writeTimeout"),
			ShutdownTimeout:              v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:           v.GetDuration("server.jwtExpirationDelta"),
			SuperAdminJWTExpirationDelta: v.GetDuration("server.superAdminJwtExpirationDelta"),
			JWTRefreshExpirationDelta:    v.GetDuration("server.jwtRefreshExpirationDelta"),
			CookieMaxAge:                 v.GetDuration("server.cookieMaxAge"),
			CORSAllowOrigins:             v.GetStringSlice("server.corsAllowOrigins"),
			BodyLimit:                    v.GetString("server.bodyLimit"),
			RateLimitRequests:            v.GetInt("server.rateLimit.requests"),
			RateLimitWindow:              v.GetDuration("server.rateLimit.window"),
			MaxUploadSize:                v.GetInt64("server.maxUploadSize"),
		},
		Database: DatabaseConfig{
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
			MaxIdleConns:  v.GetInt("database.maxIdleConns"),
			MaxOpenConns:  v.GetInt("database.maxOpenConns"),
			LogQueries:    v.GetBool("database.logQueries"),
		},
		Storage: StorageConfig{
			Backend:    v.GetString("storage.backend"),
			LocalDir:   v.GetString("storage.localDir"),
			PublicURL:  v.GetString("storage.publicURL"),
			S3Bucket:   v.GetString("storage.s3Bucket"),
			S3Region:   v.GetString("storage.s3Region"),
			S3Endpoint: v.GetString("storage.s3Endpoint"),
		},
		Cache: CacheConfig{
			RedisURL: v.GetString("cache.redisURL"),
			ThemeTTL: v.GetDuration("cache.themeTTL"),
		},
	}

	if conf.Debug {
		conf.LogLevel = "debug"
		conf.LogConsole = true
	}
	if conf.SecretKey == "" {
		if env != "dev" && env != "test" {
			log.Fatal("config: secretKey is required")
		}
		conf.SecretKey = "dev-insecure-secret-6vq$u+x2h@k9(zr0m^t3"
	}
	return conf
}
