package blog

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vedran/blog/content"
	"github.com/vedran/blog/subscribe"
)

// SiteConfig holds all configuration for the site. LoadConfig fills it from
// config.yaml, the environment (BLOG_ prefix) and an optional .env file.
type SiteConfig struct {
	Site content.Site `mapstructure:"site"`

	Addr         string        `mapstructure:"addr"`         // listen address (default ":8000")
	ContentDir   string        `mapstructure:"contentDir"`   // markdown sources (default "content")
	OutputDir    string        `mapstructure:"outputDir"`    // static build target (default "public")
	StaticDir    string        `mapstructure:"staticDir"`    // files copied verbatim (default "static")
	CacheDir     string        `mapstructure:"cacheDir"`     // generated images (default ".cache")
	DatabasePath string        `mapstructure:"databasePath"` // SQLite path (default ".cache/site.db")
	AvatarPath   string        `mapstructure:"avatarPath"`   // header picture
	IconPath     string        `mapstructure:"iconPath"`     // source of the manifest icons
	Drafts       bool          `mapstructure:"drafts"`       // publish entries marked draft
	Watch        bool          `mapstructure:"watch"`        // reload content on change while serving
	CacheTTL     time.Duration `mapstructure:"cacheTTL"`     // entry cache TTL (default 5m)
	TrackingID   string        `mapstructure:"trackingId"`   // Google Analytics, optional

	SessionSecret string `mapstructure:"sessionSecret"` // required to serve
	CookieSecure  bool   `mapstructure:"cookieSecure"`  // set true behind HTTPS

	Subscribe SubscribeConfig `mapstructure:"subscribe"`
	Manifest  ManifestConfig  `mapstructure:"manifest"`
	Deploy    DeployConfig    `mapstructure:"deploy"`
}

// SubscribeConfig configures the subscription relay.
type SubscribeConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Limit    int           `mapstructure:"limit"`  // submissions per IP per window
	Window   time.Duration `mapstructure:"window"` // limiter window
}

// ManifestConfig describes the web app manifest.
type ManifestConfig struct {
	Name            string `mapstructure:"name"`
	ShortName       string `mapstructure:"shortName"`
	StartURL        string `mapstructure:"startUrl"`
	BackgroundColor string `mapstructure:"backgroundColor"`
	ThemeColor      string `mapstructure:"themeColor"`
	Display         string `mapstructure:"display"`
}

// DeployConfig names the bucket the built site is uploaded to.
type DeployConfig struct {
	Bucket   string `mapstructure:"bucket"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"` // S3 compatible endpoint, optional
	Prefix   string `mapstructure:"prefix"`

	// Static credentials; the default AWS chain is used when empty.
	AccessKey string `mapstructure:"accessKey"`
	SecretKey string `mapstructure:"secretKey"`
}

func (c *SiteConfig) setDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "Blog"
	}
	if c.Site.SiteURL == "" {
		c.Site.SiteURL = "http://localhost:8000"
	}
	if c.Addr == "" {
		c.Addr = ":8000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.OutputDir == "" {
		c.OutputDir = "public"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.CacheDir == "" {
		c.CacheDir = ".cache"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = c.CacheDir + "/site.db"
	}
	if c.AvatarPath == "" {
		c.AvatarPath = c.ContentDir + "/assets/profile-pic.jpg"
	}
	if c.IconPath == "" {
		c.IconPath = c.ContentDir + "/assets/gatsby-icon.png"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.Subscribe.Endpoint == "" {
		c.Subscribe.Endpoint = subscribe.DefaultEndpoint
	}
	if c.Subscribe.Limit == 0 {
		c.Subscribe.Limit = 5
	}
	if c.Subscribe.Window == 0 {
		c.Subscribe.Window = time.Minute
	}
	if c.Manifest.Name == "" {
		c.Manifest.Name = c.Site.Title
	}
	if c.Manifest.ShortName == "" {
		c.Manifest.ShortName = c.Manifest.Name
	}
	if c.Manifest.StartURL == "" {
		c.Manifest.StartURL = "/"
	}
	if c.Manifest.BackgroundColor == "" {
		c.Manifest.BackgroundColor = "#ffffff"
	}
	if c.Manifest.ThemeColor == "" {
		c.Manifest.ThemeColor = "#663399"
	}
	if c.Manifest.Display == "" {
		c.Manifest.Display = "minimal-ui"
	}
}

// configKeys are bound to BLOG_* variables so every setting can come from the
// environment even when the config file does not mention it.
var configKeys = []string{
	"site.title", "site.author", "site.description", "site.siteUrl",
	"site.social.twitter", "site.social.github", "site.social.email",
	"addr", "contentDir", "outputDir", "staticDir", "cacheDir", "databasePath",
	"avatarPath", "iconPath", "drafts", "watch", "cacheTTL", "trackingId",
	"sessionSecret", "cookieSecure",
	"subscribe.endpoint", "subscribe.limit", "subscribe.window",
	"manifest.name", "manifest.shortName", "manifest.startUrl",
	"manifest.backgroundColor", "manifest.themeColor", "manifest.display",
	"deploy.bucket", "deploy.region", "deploy.endpoint", "deploy.prefix",
	"deploy.accessKey", "deploy.secretKey",
}

// LoadConfig reads path, or ./config.yaml when path is empty. A missing
// default file is not an error; a missing explicit one is.
func LoadConfig(path string) (SiteConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return SiteConfig{}, fmt.Errorf("blog: load .env: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range configKeys {
		_ = v.BindEnv(k)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return SiteConfig{}, fmt.Errorf("blog: read config: %w", err)
		}
	}

	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("blog: decode config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger sets the logger (default zap.NewNop).
func WithLogger(log *zap.Logger) Option {
	return func(a *App) {
		a.Log = log
	}
}

// WithSubscriber replaces the client that relays subscriptions.
func WithSubscriber(s subscribe.Subscriber) Option {
	return func(a *App) {
		a.subscriber = s
	}
}

// WithViews replaces the page templates.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
