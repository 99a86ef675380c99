package transport

import (
	"compress/flate"
	"compress/gzip"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/richard-senior/matchcast/internal/logger"
)

var (
	httpClient *http.Client
	clientOnce sync.Once
)

// caBundleEnv names an optional PEM file appended to the system roots, for networks
// behind an intercepting proxy
const caBundleEnv = "MATCHCAST_CA_BUNDLE"

func loadExtraCABundle() ([]byte, error) {
	path := os.Getenv(caBundleEnv)
	if path == "" {
		return nil, nil
	}
	caCert, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CA bundle %s: %w", path, err)
	}
	return caCert, nil
}

// Client returns the shared HTTP client with the custom TLS configuration
func Client() *http.Client {
	clientOnce.Do(func() {
		rootCAs, err := x509.SystemCertPool()
		if err != nil {
			logger.Warn("Failed to get system cert pool", err)
			rootCAs = x509.NewCertPool()
		}

		extra, err := loadExtraCABundle()
		if err != nil {
			logger.Warn("Proceeding without extra CA bundle", err)
		} else if extra != nil {
			if ok := rootCAs.AppendCertsFromPEM(extra); !ok {
				logger.Warn("Failed to append CA bundle")
			} else {
				logger.Info("Added CA bundle to root CAs")
			}
		}

		httpClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{RootCAs: rootCAs},
				Proxy:           http.ProxyFromEnvironment,
			},
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		}
	})
	return httpClient
}

// GetBytes fetches a URL and returns the decoded body
func GetBytes(url string) ([]byte, error) {
	return get(Client(), url)
}

func get(client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// explicit Accept-Encoding disables Go's transparent gzip, so decoding happens below
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/csv,text/html,application/xhtml+xml,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s returned error status %d", url, resp.StatusCode)
	}

	reader, err := decodeBody(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return data, nil
}

// decodeBody wraps body in a reader for its Content-Encoding
func decodeBody(encoding string, body io.ReadCloser) (io.ReadCloser, error) {
	switch encoding {
	case "gzip":
		logger.Debug("Handling gzip compressed content")
		r, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return r, nil
	case "deflate":
		logger.Debug("Handling deflate compressed content")
		return flate.NewReader(body), nil
	case "br":
		logger.Debug("Handling brotli compressed content")
		return io.NopCloser(brotli.NewReader(body)), nil
	case "", "identity":
		return io.NopCloser(body), nil
	default:
		logger.Warn("Unknown content encoding:", encoding)
		return io.NopCloser(body), nil
	}
}

// Download fetches url and writes it to dest, creating parent directories
func Download(url, dest string) error {
	data, err := GetBytes(url)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	logger.Info("Downloaded", url, dest, len(data))
	return nil
}
