// Package webhook posts completion notices to an HTTP endpoint.
package webhook

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Client has a timeout so an unresponsive endpoint cannot hang a run.
var Client = &http.Client{Timeout: 30 * time.Second}

// Send posts body to the given URL as application/json. Custom headers are
// applied after the default Content-Type, so callers can override it.
// Header values are expanded with os.ExpandEnv to support $VAR secrets.
func Send(url, body string, headers map[string]string) error {
	req, err := http.NewRequest("POST", url, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, os.ExpandEnv(v))
	}

	resp, err := Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, readSnippet(resp.Body))
	}
	return nil
}

// readSnippet reads up to 200 bytes from r for inclusion in error messages.
func readSnippet(r io.Reader) string {
	buf := make([]byte, 200)
	n, _ := io.ReadFull(r, buf)
	if n == 0 {
		return "(empty body)"
	}
	s := string(buf[:n])
	if n == 200 {
		s += "..."
	}
	return s
}
