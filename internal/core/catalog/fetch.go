package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const userAgent = "vbisect-catalog"

// NewHTTPClient returns the retrying client used for release fetches.
func NewHTTPClient(log zerolog.Logger) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 250 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = leveledLogger{log: log}
	return client
}

// leveledLogger adapts zerolog to retryablehttp.LeveledLogger.
type leveledLogger struct {
	log zerolog.Logger
}

var _ retryablehttp.LeveledLogger = leveledLogger{}

func (l leveledLogger) Error(msg string, kv ...any) { l.log.Error().Fields(kv).Msg(msg) }
func (l leveledLogger) Warn(msg string, kv ...any)  { l.log.Warn().Fields(kv).Msg(msg) }
func (l leveledLogger) Info(msg string, kv ...any)  { l.log.Debug().Fields(kv).Msg(msg) }
func (l leveledLogger) Debug(msg string, kv ...any) { l.log.Trace().Fields(kv).Msg(msg) }

func (c *Catalog) fetchReleasesJSON(ctx context.Context) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.cfg.ReleasesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request releases: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug().Err(err).Msg("close releases response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request releases: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read releases body: %w", err)
	}

	return body, nil
}

// parseReleases decodes a JSON array of releases. Entries may be plain
// version strings, {"version", "date"} objects, or GitHub release objects
// ({"tag_name", "published_at", "draft"}); drafts and entries without a
// version are skipped.
func parseReleases(body []byte) ([]Release, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode releases: invalid json")
	}

	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("decode releases: expected array")
	}

	var releases []Release
	root.ForEach(func(_, value gjson.Result) bool {
		if r, ok := releaseOf(value); ok {
			releases = append(releases, r)
		}
		return true
	})

	if len(releases) == 0 {
		return nil, fmt.Errorf("decode releases: no versions")
	}

	return releases, nil
}

func releaseOf(value gjson.Result) (Release, bool) {
	if value.Type == gjson.String {
		return Release{Version: value.String()}, value.String() != ""
	}
	if !value.IsObject() || value.Get("draft").Bool() {
		return Release{}, false
	}

	r := Release{Version: value.Get("version").String(), Date: value.Get("date").String()}
	if r.Version == "" {
		r.Version = value.Get("tag_name").String()
	}
	if r.Date == "" {
		r.Date = value.Get("published_at").String()
	}
	return r, r.Version != ""
}
