package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DatabaseConnection describes how to reach PostgreSQL with one set of
// credentials.
type DatabaseConnection struct {
	// Username for database authentication
	Username string `env:"USERNAME" yaml:"username"`
	// Password for database authentication
	Password string `env:"PASSWORD" yaml:"password"`
	// Host is the database server hostname or IP address
	Host string `env:"HOST" yaml:"host"`
	// Port is the database server port number
	Port int `env:"PORT" yaml:"port"`
	// SslMode defines the SSL mode for the database connection
	SslMode string `env:"SSL_MODE" yaml:"sslMode"`
	// DatabaseName is the name of the database to connect to
	DatabaseName string `env:"NAME" yaml:"name"`
	// MaxOpenConnections limits the number of open connections to the database
	MaxOpenConnections int `env:"MAX_OPEN_CONNECTIONS" yaml:"maxOpenConnections"`
	// MaxIdleConnections limits the number of connections in the idle connection pool
	MaxIdleConnections int `env:"MAX_IDLE_CONNECTIONS" yaml:"maxIdleConnections"`
	// ConnMaxLifetime is the maximum amount of time a connection may be reused
	ConnMaxLifetime time.Duration `env:"CONNECTION_MAX_LIFETIME" yaml:"connMaxLifetime"`
	// ConnMaxIdleTime is the maximum amount of time a connection may be idle
	ConnMaxIdleTime time.Duration `env:"CONNECTION_MAX_IDLE_TIME" yaml:"connMaxIdleTime"`
}

// Config represents the application configuration structure.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level when set (debug, info, warn, error)
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"10s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// CORSOrigins lists the origins allowed to call the API from a browser
		CORSOrigins []string `env:"HTTP_CORS_ORIGINS" env-default:"*" env-separator:"," yaml:"corsOrigins"`
		// Debug enables the /debug/pprof endpoints
		Debug bool `env:"HTTP_DEBUG" env-default:"false" yaml:"debug"`
	} `yaml:"http"`

	// Database holds the two connections used by the service. Elevated bypasses
	// row-level security and is used for public writes, migrations and jobs;
	// Session connects with a role that can assume SessionRole for scoped reads.
	Database struct {
		Elevated DatabaseConnection `env-prefix:"DATABASE_ELEVATED_" yaml:"elevated"`
		Session  DatabaseConnection `env-prefix:"DATABASE_SESSION_" yaml:"session"`
		// SessionRole is the role scoped sessions switch to
		SessionRole string `env:"DATABASE_SESSION_ROLE" env-default:"authenticated" yaml:"sessionRole"`
	} `yaml:"database"`

	// Redis backs the submission rate limiter. An empty Addr disables it.
	Redis struct {
		Addr     string `env:"REDIS_ADDR" yaml:"addr"`
		Password string `env:"REDIS_PASSWORD" yaml:"password"`
		DB       int    `env:"REDIS_DB" env-default:"0" yaml:"db"`
	} `yaml:"redis"`

	// RateLimit configures how many submissions a single client IP may make per window
	RateLimit struct {
		Requests int           `env:"RATE_LIMIT_REQUESTS" env-default:"10" yaml:"requests"`
		Window   time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"1m" yaml:"window"`
	} `yaml:"rateLimit"`

	// Leads configures how submitted leads are recorded
	Leads struct {
		// Source is the campaign tag stored on leads created by the public form
		Source string `env:"LEADS_SOURCE" env-default:"website-lead-form" yaml:"source"`
	} `yaml:"leads"`

	// Notification configures the operator alert sent after each saved lead
	Notification struct {
		// Driver selects the dispatcher: "function" or "smtp"
		Driver string `env:"NOTIFICATION_DRIVER" env-default:"function" yaml:"driver"`
		// OperatorEmail receives the alert
		OperatorEmail string `env:"NOTIFICATION_OPERATOR_EMAIL" env-default:"leads@example.com" yaml:"operatorEmail"`
		// MaxAttempts is how many times the notification job runs before it is discarded
		MaxAttempts int `env:"NOTIFICATION_MAX_ATTEMPTS" env-default:"1" yaml:"maxAttempts"`
		// Workers is the number of concurrent notification workers
		Workers int `env:"NOTIFICATION_WORKERS" env-default:"4" yaml:"workers"`

		Function struct {
			BaseURL    string        `env:"NOTIFICATION_FUNCTION_BASE_URL" yaml:"baseURL"`
			ServiceKey string        `env:"NOTIFICATION_FUNCTION_SERVICE_KEY" yaml:"serviceKey"`
			Name       string        `env:"NOTIFICATION_FUNCTION_NAME" env-default:"send-lead-notification" yaml:"name"`
			Timeout    time.Duration `env:"NOTIFICATION_FUNCTION_TIMEOUT" env-default:"10s" yaml:"timeout"`
		} `yaml:"function"`

		SMTP struct {
			Host     string `env:"NOTIFICATION_SMTP_HOST" env-default:"localhost" yaml:"host"`
			Port     int    `env:"NOTIFICATION_SMTP_PORT" env-default:"587" yaml:"port"`
			Username string `env:"NOTIFICATION_SMTP_USERNAME" yaml:"username"`
			Password string `env:"NOTIFICATION_SMTP_PASSWORD" yaml:"password"`
			From     string `env:"NOTIFICATION_SMTP_FROM" env-default:"no-reply@example.com" yaml:"from"`
		} `yaml:"smtp"`
	} `yaml:"notification"`

	// JWT holds the RSA keys used to verify (and, for the jwt command, sign) admin tokens
	JWT struct {
		PublicKey  string `env:"JWT_PUBLIC_KEY" yaml:"publicKey"`
		PrivateKey string `env:"JWT_PRIVATE_KEY" yaml:"privateKey"`
	} `yaml:"jwt"`

	// Sentry configures error reporting. An empty DSN disables it.
	Sentry struct {
		DSN              string  `env:"SENTRY_DSN" yaml:"dsn"`
		TracesSampleRate float64 `env:"SENTRY_TRACES_SAMPLE_RATE" env-default:"0" yaml:"tracesSampleRate"`
	} `yaml:"sentry"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

func (c *DatabaseConnection) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.SslMode == "" {
		c.SslMode = "disable"
	}
	if c.DatabaseName == "" {
		c.DatabaseName = "leads"
	}
	if c.MaxOpenConnections == 0 {
		c.MaxOpenConnections = 10
	}
	if c.MaxIdleConnections == 0 {
		c.MaxIdleConnections = 2
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = 3 * time.Minute
	}
	if c.ConnMaxIdleTime == 0 {
		c.ConnMaxIdleTime = 3 * time.Minute
	}
}

// Load receives the path for yaml config file and returns a filled Config struct.
// An empty path reads the configuration from the environment only.
func Load(configPath string) (*Config, error) {
	var cfg Config
	var err error
	if configPath == "" {
		err = cleanenv.ReadEnv(&cfg)
	} else {
		err = cleanenv.ReadConfig(configPath, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	cfg.Database.Elevated.applyDefaults()
	cfg.Database.Session.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Notification.Driver {
	case "function", "smtp":
	default:
		return fmt.Errorf("unknown notification driver %q", c.Notification.Driver)
	}
	if c.Notification.MaxAttempts < 1 {
		return fmt.Errorf("notification max attempts must be at least 1, got %d", c.Notification.MaxAttempts)
	}

	return nil
}
