// Package version reports the build version and checks for newer releases.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	goversion "github.com/hashicorp/go-version"
	"github.com/nulzo/model-catalog-api/internal/cli"
	"github.com/nulzo/model-catalog-api/internal/httpclient"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X .../internal/version.Version=v1.2.3".
var Version = "v0.0.0"

const DefaultReleasesURL = "https://api.github.com/repos/nulzo/model-catalog-api/releases/latest"

type release struct {
	TagName string `json:"tag_name"`
}

type Checker struct {
	URL     string
	Current string
	Client  httpclient.HTTPClient
}

func NewChecker() *Checker {
	return &Checker{
		URL:     DefaultReleasesURL,
		Current: Version,
		Client:  &http.Client{Timeout: 2 * time.Second},
	}
}

// Latest returns the newest release tag and whether it is ahead of Current.
func (c *Checker) Latest(ctx context.Context) (string, bool, error) {
	body, err := httpclient.Get(ctx, c.Client, c.URL, map[string]string{"Accept": "application/vnd.github+json"})
	if err != nil {
		return "", false, err
	}

	var r release
	if err := json.Unmarshal(body, &r); err != nil {
		return "", false, fmt.Errorf("invalid release payload: %w", err)
	}

	current, err := goversion.NewVersion(c.Current)
	if err != nil {
		return "", false, fmt.Errorf("invalid current version %q: %w", c.Current, err)
	}
	latest, err := goversion.NewVersion(r.TagName)
	if err != nil {
		return "", false, fmt.Errorf("invalid release tag %q: %w", r.TagName, err)
	}

	return r.TagName, current.LessThan(latest), nil
}

// WarnIfOutdated logs a banner when a newer release exists. Lookup
// failures are logged at debug level only.
func (c *Checker) WarnIfOutdated(ctx context.Context, log *zap.Logger) {
	latest, outdated, err := c.Latest(ctx)
	if err != nil {
		log.Debug("update check failed", zap.Error(err))
		return
	}
	if !outdated {
		return
	}
	log.Warn(fmt.Sprintf("%s You are running an outdated version (%s); the latest version is %s.",
		cli.WarningSign(), c.Current, cli.Style(latest, cli.Bold)))
}
