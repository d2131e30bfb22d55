package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	S3      S3Config
	GitHub  GitHubConfig
	Content ContentConfig
	App     AppConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
	Region          string
	// PublicURL is the base under which uploaded objects are publicly
	// reachable, e.g. a CDN in front of the bucket. When empty, URLs are
	// derived from the endpoint and bucket name (path style).
	PublicURL string
}

type GitHubConfig struct {
	Token string
	// Submissions repository: one issue per record.
	SubmissionsOwner string
	SubmissionsRepo  string
}

// ContentConfig describes the public gallery repository that approved works
// are published into via pull requests.
type ContentConfig struct {
	Owner  string
	Repo   string
	Branch string
	Path   string
	// Format of the generated file: "json" or "md" (front-matter Markdown).
	Format string
}

type AppConfig struct {
	MaxUploadSize  int64
	AllowedFormats []string
}

func Load() (*Config, error) {
	viper.SetDefault("SERVER_HOST", "localhost")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("S3_ENDPOINT", "http://localhost:9000")
	viper.SetDefault("S3_ACCESS_KEY_ID", "minioadmin")
	viper.SetDefault("S3_SECRET_ACCESS_KEY", "minioadmin")
	viper.SetDefault("S3_USE_SSL", false)
	viper.SetDefault("S3_BUCKET_NAME", "obras")
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("S3_PUBLIC_URL", "")
	viper.SetDefault("GITHUB_TOKEN", "")
	viper.SetDefault("SUBMISSIONS_OWNER", "Nandart")
	viper.SetDefault("SUBMISSIONS_REPO", "nandart-submissoes")
	viper.SetDefault("CONTENT_OWNER", "Nandart")
	viper.SetDefault("CONTENT_REPO", "nandart-galeria")
	viper.SetDefault("CONTENT_BRANCH", "main")
	viper.SetDefault("CONTENT_PATH", "obras")
	viper.SetDefault("CONTENT_FORMAT", "json")
	viper.SetDefault("APP_MAX_UPLOAD_SIZE", 10*1024*1024) // 10MB
	viper.SetDefault("APP_ALLOWED_FORMATS", []string{".jpg", ".jpeg", ".png"})

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("SERVER_HOST"),
			Port: viper.GetString("SERVER_PORT"),
		},
		S3: S3Config{
			Endpoint:        viper.GetString("S3_ENDPOINT"),
			AccessKeyID:     viper.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: viper.GetString("S3_SECRET_ACCESS_KEY"),
			UseSSL:          viper.GetBool("S3_USE_SSL"),
			BucketName:      viper.GetString("S3_BUCKET_NAME"),
			Region:          viper.GetString("S3_REGION"),
			PublicURL:       viper.GetString("S3_PUBLIC_URL"),
		},
		GitHub: GitHubConfig{
			Token:            viper.GetString("GITHUB_TOKEN"),
			SubmissionsOwner: viper.GetString("SUBMISSIONS_OWNER"),
			SubmissionsRepo:  viper.GetString("SUBMISSIONS_REPO"),
		},
		Content: ContentConfig{
			Owner:  viper.GetString("CONTENT_OWNER"),
			Repo:   viper.GetString("CONTENT_REPO"),
			Branch: viper.GetString("CONTENT_BRANCH"),
			Path:   viper.GetString("CONTENT_PATH"),
			Format: viper.GetString("CONTENT_FORMAT"),
		},
		App: AppConfig{
			MaxUploadSize:  viper.GetInt64("APP_MAX_UPLOAD_SIZE"),
			AllowedFormats: viper.GetStringSlice("APP_ALLOWED_FORMATS"),
		},
	}

	if cfg.GitHub.Token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN is required")
	}
	if cfg.Content.Format != "json" && cfg.Content.Format != "md" {
		return nil, fmt.Errorf("CONTENT_FORMAT must be json or md, got %q", cfg.Content.Format)
	}

	return cfg, nil
}
