package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Media backends.
const (
	MediaLocal = "local"
	MediaMinIO = "minio"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Site     SiteConfig     `mapstructure:"site"`
	Mail     MailConfig     `mapstructure:"mail"`
	Media    MediaConfig    `mapstructure:"media"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port       string `mapstructure:"port"`
	ListenAddr string `mapstructure:"listen_addr"`
	GinMode    string `mapstructure:"gin_mode"`
}

// DatabaseConfig 选择驱动与连接串；sqlite 使用 Path，postgres 使用 URL。
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	URL    string `mapstructure:"url"`
}

// DSN returns the connection string for the selected driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "postgres" {
		return d.URL
	}
	return d.Path
}

// SiteConfig covers sessions and the admin bootstrap account.
type SiteConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	SessionSecret     string `mapstructure:"session_secret"`
	SuperRootUserName string `mapstructure:"super_root_user_name"`
	SuperRootPassword string `mapstructure:"super_root_password"`
}

// MailConfig 描述联系表单使用的 SMTP 服务器。
type MailConfig struct {
	SMTPHost         string `mapstructure:"smtp_host"`
	SMTPPort         int    `mapstructure:"smtp_port"`
	DefaultFromEmail string `mapstructure:"default_from_email"`
}

// MediaConfig 描述上传文件的存放位置
type MediaConfig struct {
	Backend   string `mapstructure:"backend"`
	UploadDir string `mapstructure:"upload_dir"`
	URLPath   string `mapstructure:"url_path"`
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
	PublicURL       string `mapstructure:"public_url"`
}

// Load 从环境变量读取应用配置，并为缺失项提供默认值。
func Load() (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	normalize(&cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "vitrine.db")
	v.SetDefault("site.base_url", "http://localhost:8080")
	v.SetDefault("site.session_secret", "vitrine-dev-secret")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("media.backend", MediaLocal)
	v.SetDefault("media.upload_dir", "media")
	v.SetDefault("media.url_path", "/media")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "vitrine")
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"server.port":               "PORT",
		"server.listen_addr":        "LISTEN_ADDR",
		"server.gin_mode":           "GIN_MODE",
		"database.driver":           "DB_DRIVER",
		"database.path":             "DATABASE_PATH",
		"database.url":              "DATABASE_URL",
		"site.base_url":             "SITE_BASE_URL",
		"site.session_secret":       "SESSION_SECRET",
		"site.super_root_user_name": "SUPER_ROOT_USER_NAME",
		"site.super_root_password":  "SUPER_ROOT_PASSWORD",
		"mail.smtp_host":            "SMTP_HOST",
		"mail.smtp_port":            "SMTP_PORT",
		"mail.default_from_email":   "DEFAULT_FROM_EMAIL",
		"media.backend":             "MEDIA_BACKEND",
		"media.upload_dir":          "UPLOAD_DIR",
		"media.url_path":            "UPLOAD_URL_PATH",
		"minio.endpoint":            "MINIO_ENDPOINT",
		"minio.access_key_id":       "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":   "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":             "MINIO_USE_SSL",
		"minio.bucket":              "MINIO_BUCKET",
		"minio.public_url":          "MINIO_PUBLIC_URL",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}
	return nil
}

func normalize(cfg *AppConfig) {
	cfg.Server.Port = strings.TrimSpace(cfg.Server.Port)
	cfg.Server.ListenAddr = strings.TrimSpace(cfg.Server.ListenAddr)
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":" + cfg.Server.Port
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	cfg.Media.Backend = strings.ToLower(strings.TrimSpace(cfg.Media.Backend))
	cfg.Media.URLPath = "/" + strings.Trim(strings.TrimSpace(cfg.Media.URLPath), "/")
	cfg.Site.SuperRootUserName = strings.TrimSpace(cfg.Site.SuperRootUserName)
	cfg.Site.SuperRootPassword = strings.TrimSpace(cfg.Site.SuperRootPassword)
}

func validate(cfg AppConfig) error {
	if cfg.Server.Port == "" {
		return errors.New("server port is required")
	}
	switch cfg.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid gin mode %q", cfg.Server.GinMode)
	}
	switch cfg.Database.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.Database.Path) == "" {
			return errors.New("database path is required for sqlite")
		}
	case "postgres":
		if strings.TrimSpace(cfg.Database.URL) == "" {
			return errors.New("database url is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if strings.TrimSpace(cfg.Site.SessionSecret) == "" {
		return errors.New("session secret is required")
	}
	if cfg.Mail.SMTPPort <= 0 {
		return errors.New("smtp port must be positive")
	}
	switch cfg.Media.Backend {
	case MediaLocal:
		if strings.TrimSpace(cfg.Media.UploadDir) == "" {
			return errors.New("upload dir is required for local media")
		}
	case MediaMinIO:
		if cfg.MinIO.Endpoint == "" {
			return errors.New("minio endpoint is required")
		}
		if cfg.MinIO.AccessKeyID == "" {
			return errors.New("minio access key id is required")
		}
		if cfg.MinIO.SecretAccessKey == "" {
			return errors.New("minio secret access key is required")
		}
		if cfg.MinIO.Bucket == "" {
			return errors.New("minio bucket is required")
		}
	default:
		return fmt.Errorf("unsupported media backend %q", cfg.Media.Backend)
	}
	return nil
}
