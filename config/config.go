package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Quote      QuoteConfig      `mapstructure:"quote"`
	Browser    BrowserConfig    `mapstructure:"browser"`
	Model      ModelConfig      `mapstructure:"model"`
	Credential CredentialConfig `mapstructure:"credential"`
	Output     OutputConfig     `mapstructure:"output"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Log        LogConfig        `mapstructure:"log"`
}

// QuoteConfig names the single instrument being scraped.
type QuoteConfig struct {
	Symbol string `mapstructure:"symbol"`
	URL    string `mapstructure:"url"`
}

type BrowserConfig struct {
	ChromePath       string        `mapstructure:"chrome_path"`
	WindowWidth      int           `mapstructure:"window_width"`
	WindowHeight     int           `mapstructure:"window_height"`
	PageReadyTimeout time.Duration `mapstructure:"page_ready_timeout"`
	ElementTimeout   time.Duration `mapstructure:"element_timeout"`
}

type ModelConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Name        string        `mapstructure:"name"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float64       `mapstructure:"temperature"`
	Debug       bool          `mapstructure:"debug"`
}

// CredentialConfig tells where the model API key comes from.
type CredentialConfig struct {
	EnvVar       string `mapstructure:"env_var"`
	SSMParameter string `mapstructure:"ssm_parameter"` // optional AWS Parameter Store name
}

type OutputConfig struct {
	Path           string `mapstructure:"path"`
	ScreenshotPath string `mapstructure:"screenshot_path"`
}

type ScheduleConfig struct {
	Cron     string        `mapstructure:"cron"`
	Every    time.Duration `mapstructure:"every"` // fixed interval; overrides cron when > 0
	Timezone string        `mapstructure:"timezone"`
}

// Options defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("quote.symbol", "MALEE")
	v.SetDefault("quote.url", "https://www.set.or.th/th/market/product/stock/quote/MALEE/price")

	v.SetDefault("browser.chrome_path", "")
	v.SetDefault("browser.window_width", 1600)
	v.SetDefault("browser.window_height", 1200)
	v.SetDefault("browser.page_ready_timeout", 30*time.Second)
	v.SetDefault("browser.element_timeout", 20*time.Second)

	v.SetDefault("model.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("model.name", "gemini-2.5-flash")
	v.SetDefault("model.timeout", 60*time.Second)
	v.SetDefault("model.temperature", 0.0)
	v.SetDefault("model.debug", false)

	v.SetDefault("credential.env_var", "GOOGLE_API_KEY")
	v.SetDefault("credential.ssm_parameter", "")

	v.SetDefault("output.path", "price.json")
	v.SetDefault("output.screenshot_path", "set_malee.png")

	v.SetDefault("schedule.cron", "*/15 10-16 * * 1-5")
	v.SetDefault("schedule.every", time.Duration(0))
	v.SetDefault("schedule.timezone", "Asia/Bangkok")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_file", "")
	v.SetDefault("log.environment", "dev")
}

// Load loads application configuration using Viper.
// It reads config.yaml when present and overrides with environment variables.
// An explicit path must exist; the default search locations are optional.
func Load(path string) (*Config, error) {
	// .env is a convenience for local runs; CI exports real env vars
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config") // config.yaml
		v.SetConfigType("yaml")
		v.AddConfigPath("config")
		v.AddConfigPath(".")
		if ex, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
		}
	}

	// Support environment variables with dot notation (e.g., MODEL_NAME)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// CHROME_PATH is what setup-chrome style CI actions export
	if err := v.BindEnv("browser.chrome_path", "BROWSER_CHROME_PATH", "CHROME_PATH"); err != nil {
		return nil, fmt.Errorf("bind chrome path env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Quote.Symbol == "":
		return errors.New("config: quote.symbol is empty")
	case c.Quote.URL == "":
		return errors.New("config: quote.url is empty")
	case c.Model.Name == "":
		return errors.New("config: model.name is empty")
	case c.Credential.EnvVar == "":
		return errors.New("config: credential.env_var is empty")
	case c.Output.Path == "":
		return errors.New("config: output.path is empty")
	}
	return nil
}
