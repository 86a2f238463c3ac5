package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	Notion     NotionConfig
	Catalog    CatalogConfig
	Quotations QuotationsConfig
	Sessions   SessionsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.DB.validateDriver(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"COTIZADOR_APP_ENV" required:"true"`
	Port         string   `envconfig:"COTIZADOR_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"COTIZADOR_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"COTIZADOR_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"COTIZADOR_CORS_ORIGINS" default:"*"`
	AutoMigrate  bool     `envconfig:"COTIZADOR_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig points at the local quotation store. SQLite is the default so the
// fallback store works without any infrastructure.
type DBConfig struct {
	Driver string `envconfig:"COTIZADOR_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"COTIZADOR_DB_DSN"`

	Host     string `envconfig:"COTIZADOR_DB_HOST"`
	Port     int    `envconfig:"COTIZADOR_DB_PORT" default:"5432"`
	User     string `envconfig:"COTIZADOR_DB_USER"`
	Password string `envconfig:"COTIZADOR_DB_PASSWORD"`
	Name     string `envconfig:"COTIZADOR_DB_NAME"`
	SSLMode  string `envconfig:"COTIZADOR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COTIZADOR_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"COTIZADOR_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"COTIZADOR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COTIZADOR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

// RedisConfig is optional: with an empty URL and address the service runs on
// in-memory sessions and the database sequence counter.
type RedisConfig struct {
	URL          string        `envconfig:"COTIZADOR_REDIS_URL"`
	Address      string        `envconfig:"COTIZADOR_REDIS_ADDR"`
	Password     string        `envconfig:"COTIZADOR_REDIS_PASSWORD"`
	DB           int           `envconfig:"COTIZADOR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COTIZADOR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COTIZADOR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COTIZADOR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COTIZADOR_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"COTIZADOR_REDIS_WRITE_TIMEOUT" default:"3s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type NotionConfig struct {
	APIKey  string        `envconfig:"COTIZADOR_NOTION_API_KEY"`
	BaseURL string        `envconfig:"COTIZADOR_NOTION_BASE_URL" default:"https://api.notion.com/v1"`
	Version string        `envconfig:"COTIZADOR_NOTION_VERSION" default:"2022-06-28"`
	Timeout time.Duration `envconfig:"COTIZADOR_NOTION_TIMEOUT" default:"15s"`

	ItemsDatabaseID      string `envconfig:"COTIZADOR_NOTION_ITEMS_DB"`
	ClientsDatabaseID    string `envconfig:"COTIZADOR_NOTION_CLIENTS_DB"`
	ProjectsDatabaseID   string `envconfig:"COTIZADOR_NOTION_PROJECTS_DB"`
	EventsDatabaseID     string `envconfig:"COTIZADOR_NOTION_EVENTS_DB"`
	QuotationsDatabaseID string `envconfig:"COTIZADOR_NOTION_QUOTATIONS_DB"`
}

// Enabled reports whether the workspace can be reached at all.
func (n NotionConfig) Enabled() bool {
	return strings.TrimSpace(n.APIKey) != ""
}

type CatalogConfig struct {
	SeedPath    string        `envconfig:"COTIZADOR_CATALOG_SEED_PATH"`
	CacheTTL    time.Duration `envconfig:"COTIZADOR_CATALOG_CACHE_TTL" default:"10m"`
	SyncOnStart bool          `envconfig:"COTIZADOR_CATALOG_SYNC_ON_START" default:"true"`
}

type QuotationsConfig struct {
	LocalCap         int           `envconfig:"COTIZADOR_QUOTATIONS_LOCAL_CAP" default:"50"`
	PDFUploadTimeout time.Duration `envconfig:"COTIZADOR_QUOTATIONS_PDF_UPLOAD_TIMEOUT" default:"60s"`
	MaxPDFMB         int           `envconfig:"COTIZADOR_QUOTATIONS_MAX_PDF_MB" default:"20"`
}

// MaxPDFBytes caps uploaded proposal documents.
func (q QuotationsConfig) MaxPDFBytes() int64 {
	if q.MaxPDFMB <= 0 {
		return 20 << 20
	}
	return int64(q.MaxPDFMB) << 20
}

type SessionsConfig struct {
	TTL time.Duration `envconfig:"COTIZADOR_SESSION_TTL" default:"24h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range postgresDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}
	db.DSN = u.String()
	return nil
}

func (db DBConfig) validateDriver() error {
	switch strings.ToLower(db.Driver) {
	case DBDriverSQLite, DBDriverPostgres:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvDBDriver, DBDriverSQLite, DBDriverPostgres, db.Driver)
	}
}
