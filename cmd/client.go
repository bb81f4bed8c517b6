package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"
)

// daemonURL builds a URL for the local daemon API.
func daemonURL(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", viper.GetInt("port"), path)
}

var daemonHTTP = &http.Client{Timeout: 30 * time.Second}

// apiGet calls the daemon API and decodes the JSON response into out.
func apiGet(path string, out any) error {
	resp, err := daemonHTTP.Get(daemonURL(path))
	if err != nil {
		return fmt.Errorf("daemon not reachable (is 'autoabsen serve' running?): %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiPost posts a JSON body (may be nil) to the daemon API.
func apiPost(path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	resp, err := daemonHTTP.Post(daemonURL(path), "application/json", &buf)
	if err != nil {
		return fmt.Errorf("daemon not reachable (is 'autoabsen serve' running?): %w", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
