package initializers

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all portal configuration.
type Config struct {
	App     AppConfig
	DB      DBConfig
	Storage StorageConfig
	Drafts  DraftConfig
	Remote  RemoteConfig
	Log     LogConfig
	JWT     JWTConfig
	CORS    CORSConfig
}

type AppConfig struct {
	Name string
	Env  string
	Port string
}

type DBConfig struct {
	DSN           string
	LogLevel      string
	SlowThreshold time.Duration
}

// StorageConfig describes where product images are stored.
type StorageConfig struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	KeyPrefix    string
	ACL          string
	UsePathStyle bool
	// UploadURL switches the drafts to a remote upload endpoint instead of S3.
	UploadURL string
}

type DraftConfig struct {
	PreviewDir    string
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	MaxUploadSize int64
}

// RemoteConfig points the portal at a remote product API. Empty means the
// local database is used.
type RemoteConfig struct {
	ProductsURL string
	Token       string
	Timeout     time.Duration
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowOrigins []string
}

// LoadConfig reads AMEXAN_ prefixed environment variables on top of the
// defaults below.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AMEXAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		DB: DBConfig{
			DSN:           v.GetString("db.dsn"),
			LogLevel:      v.GetString("db.log_level"),
			SlowThreshold: v.GetDuration("db.slow_threshold"),
		},
		Storage: StorageConfig{
			Bucket:       v.GetString("storage.bucket"),
			Region:       v.GetString("storage.region"),
			Endpoint:     v.GetString("storage.endpoint"),
			AccessKey:    v.GetString("storage.access_key"),
			SecretKey:    v.GetString("storage.secret_key"),
			KeyPrefix:    v.GetString("storage.key_prefix"),
			ACL:          v.GetString("storage.acl"),
			UsePathStyle: v.GetBool("storage.use_path_style"),
			UploadURL:    v.GetString("storage.upload_url"),
		},
		Drafts: DraftConfig{
			PreviewDir:    v.GetString("drafts.preview_dir"),
			IdleTimeout:   v.GetDuration("drafts.idle_timeout"),
			SweepInterval: v.GetDuration("drafts.sweep_interval"),
			MaxUploadSize: v.GetInt64("drafts.max_upload_size"),
		},
		Remote: RemoteConfig{
			ProductsURL: v.GetString("remote.products_url"),
			Token:       v.GetString("remote.token"),
			Timeout:     v.GetDuration("remote.timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
		},
		CORS: CORSConfig{
			AllowOrigins: splitList(v.GetString("cors.allow_origins")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "amexan-portal")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.log_level", "warn")
	v.SetDefault("db.slow_threshold", 200*time.Millisecond)
	v.SetDefault("storage.bucket", "amexan")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.key_prefix", "products")
	v.SetDefault("storage.acl", "public-read")
	v.SetDefault("storage.use_path_style", false)
	v.SetDefault("storage.upload_url", "")
	v.SetDefault("drafts.preview_dir", "tmp/previews")
	v.SetDefault("drafts.idle_timeout", 2*time.Hour)
	v.SetDefault("drafts.sweep_interval", 5*time.Minute)
	v.SetDefault("drafts.max_upload_size", 10<<20)
	v.SetDefault("remote.products_url", "")
	v.SetDefault("remote.token", "")
	v.SetDefault("remote.timeout", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("cors.allow_origins", "http://localhost:4200,https://www.amexan.store")
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" && c.App.Env == "production" {
		return errors.New("AMEXAN_JWT_SECRET is required in production")
	}
	if c.Drafts.MaxUploadSize <= 0 {
		return errors.New("drafts.max_upload_size must be positive")
	}
	if c.Storage.Bucket == "" && c.Storage.UploadURL == "" {
		return errors.New("either a storage bucket or an upload URL is required")
	}
	return nil
}

// IsProduction reports whether the portal runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
