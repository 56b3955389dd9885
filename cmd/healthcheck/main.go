// Command healthcheck exits non-zero unless the kitchenwatch API in the same
// container answers its health endpoint with status "ok". Scratch images have
// no shell or curl, so the container HEALTHCHECK runs this binary instead.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	httphandler "github.com/ericfisherdev/kitchenwatch/internal/adapter/driving/http"
)

const (
	loopback    = "127.0.0.1"
	defaultPort = "8090"
	timeout     = 2 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "healthcheck:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return checkHealth(ctx, &http.Client{Timeout: timeout}, healthURL(os.Getenv("KITCHENWATCH_LISTEN_ADDR")))
}

// healthURL maps the server's listen address to a URL reachable from inside
// the container. Unspecified hosts become loopback; an unusable address
// falls back to the default port.
func healthURL(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil || port == "" {
		host, port = loopback, defaultPort
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = loopback
	}
	u := url.URL{Scheme: "http", Host: net.JoinHostPort(host, port), Path: "/api/v1/health"}
	return u.String()
}

func checkHealth(ctx context.Context, client *http.Client, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s answered %s", target, resp.Status)
	}
	var health httphandler.HealthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&health); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("server reports status %q", health.Status)
	}
	return nil
}
