package main

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fwojciec/casedoc"
)

// Config holds settings read from the environment.
type Config struct {
	DBPath       string  // CASEDOC_DB
	BaseURL      string  // CASEDOC_BASE_URL
	ArtifactsDir string  // CASEDOC_ARTIFACTS, empty disables artifacts
	RPS          float64            // CASEDOC_RPS
	HostRPS      map[string]float64 // CASEDOC_HOST_RPS, e.g. "docs.puc.example.gov=0.5"
	GeminiAPIKey string             // GEMINI_API_KEY
}

// DefaultRPS is the default politeness rate per source host.
const DefaultRPS = 1.0

// LoadConfig reads the configuration from environment variables.
func LoadConfig() Config {
	return Config{
		DBPath:       getEnvFunc("CASEDOC_DB", defaultDBPath),
		BaseURL:      os.Getenv("CASEDOC_BASE_URL"),
		ArtifactsDir: os.Getenv("CASEDOC_ARTIFACTS"),
		RPS:          getEnvFloat("CASEDOC_RPS", DefaultRPS),
		HostRPS:      parseHostRPS(os.Getenv("CASEDOC_HOST_RPS")),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
	}
}

// getEnvFunc returns the variable, or calls fallback only when it is unset.
func getEnvFunc(key string, fallback func() string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback()
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

// parseHostRPS reads comma-separated host=rps pairs. Malformed pairs and
// non-positive rates are ignored.
func parseHostRPS(v string) map[string]float64 {
	var rates map[string]float64
	for _, pair := range strings.Split(v, ",") {
		host, rps, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || strings.TrimSpace(host) == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(rps), 64)
		if err != nil || f <= 0 {
			continue
		}
		if rates == nil {
			rates = make(map[string]float64)
		}
		rates[strings.TrimSpace(host)] = f
	}
	return rates
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "casedoc.db"
	}
	dir := filepath.Join(home, ".casedoc")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "casedoc.db")
}

// ListingURLs returns the URL of each listing view under the source site,
// e.g. https://puc.example.gov/cases?status=open&utility=electric.
func ListingURLs(baseURL string) (map[casedoc.ListingView]string, error) {
	if baseURL == "" {
		return nil, casedoc.Errorf(casedoc.EINVALID, "source site not configured: set CASEDOC_BASE_URL")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, casedoc.Errorf(casedoc.EINVALID, "invalid CASEDOC_BASE_URL %q", baseURL)
	}

	urls := make(map[casedoc.ListingView]string)
	for _, v := range casedoc.AllListingViews() {
		ref := *u
		ref.Path = path.Join("/", u.Path, "cases")
		ref.RawQuery = url.Values{
			"utility": {string(v.Utility)},
			"status":  {string(v.Status)},
		}.Encode()
		urls[v] = ref.String()
	}
	return urls, nil
}
