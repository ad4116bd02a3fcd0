package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultAPIURL          = "http://127.0.0.1:8000"
	DefaultCaptureInterval = 15 * time.Second
	DefaultFramePattern    = "**/*.{png,jpg,jpeg}"
)

// ClientConfig configures the notetaker client.
type ClientConfig struct {
	APIURL          string
	WSURL           string
	CaptureInterval time.Duration
	CaptureEnabled  bool
	HTTPTimeout     time.Duration
	ExportDir       string
	FramePattern    string
}

// SetClientDefaults registers client defaults and environment bindings on v.
// Environment variables use the NOTES_ prefix, e.g. NOTES_API_URL.
func SetClientDefaults(v *viper.Viper) {
	godotenv.Load()

	v.SetEnvPrefix("notes")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("ws_url", "")
	v.SetDefault("capture_interval", DefaultCaptureInterval)
	v.SetDefault("capture_enabled", true)
	v.SetDefault("http_timeout", time.Duration(0))
	v.SetDefault("export_dir", ".")
	v.SetDefault("frame_pattern", DefaultFramePattern)
}

// LoadClient resolves the client configuration from v.
func LoadClient(v *viper.Viper) (*ClientConfig, error) {
	apiURL := strings.TrimRight(v.GetString("api_url"), "/")
	if _, err := url.ParseRequestURI(apiURL); err != nil {
		return nil, fmt.Errorf("invalid api_url %q: %w", apiURL, err)
	}

	wsURL := v.GetString("ws_url")
	if wsURL == "" {
		derived, err := PushURL(apiURL)
		if err != nil {
			return nil, err
		}
		wsURL = derived
	}

	interval := v.GetDuration("capture_interval")
	if interval <= 0 {
		return nil, fmt.Errorf("capture_interval must be positive, got %s", interval)
	}

	return &ClientConfig{
		APIURL:          apiURL,
		WSURL:           wsURL,
		CaptureInterval: interval,
		CaptureEnabled:  v.GetBool("capture_enabled"),
		HTTPTimeout:     v.GetDuration("http_timeout"),
		ExportDir:       v.GetString("export_dir"),
		FramePattern:    v.GetString("frame_pattern"),
	}, nil
}

// PushURL derives the push channel address from the API base URL:
// http becomes ws, https becomes wss, and the path is /ws.
func PushURL(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid api url %q: %w", apiURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported api url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = ""
	return u.String(), nil
}
