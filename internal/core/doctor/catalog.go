package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/vbisect/internal/core/catalog"
)

// Loader fetches the version catalog.
type Loader interface {
	Refresh(ctx context.Context) (catalog.Listing, error)
}

// CatalogCheck refreshes the catalog and reports where the listing came
// from and whether it is large enough to bisect.
type CatalogCheck struct {
	loader      Loader
	releasesURL string
	now         func() time.Time
}

// NewCatalogCheck creates a catalog check. releasesURL is the configured
// remote; an empty value means fetching is disabled.
func NewCatalogCheck(loader Loader, releasesURL string) *CatalogCheck {
	return &CatalogCheck{loader: loader, releasesURL: releasesURL, now: time.Now}
}

func (c *CatalogCheck) Name() string {
	return "Catalog"
}

func (c *CatalogCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	listing, err := c.loader.Refresh(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "releases",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, c.originItem(listing))

	count := CheckItem{
		Label:  "versions",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d shown", len(listing.Versions)),
	}
	if len(listing.Versions) < 2 {
		count.Status = StatusFail
		count.Detail = fmt.Sprintf("%d shown, at least 2 are needed to bisect; check the channel and glob filters", len(listing.Versions))
	}
	result.Items = append(result.Items, count)

	return result
}

func (c *CatalogCheck) originItem(l catalog.Listing) CheckItem {
	item := CheckItem{Label: "releases", Status: StatusPass}

	switch l.Origin {
	case catalog.OriginNetwork, catalog.OriginCache:
		item.Detail = c.releasesURL
	case catalog.OriginStaleCache:
		item.Status = StatusWarn
		item.Detail = fmt.Sprintf("%s unreachable, using a copy fetched %s ago",
			c.releasesURL, c.now().Sub(l.FetchedAt).Round(time.Minute))
	case catalog.OriginSnapshot:
		if c.releasesURL == "" {
			item.Detail = "fetching disabled, using the bundled snapshot"
		} else {
			item.Status = StatusWarn
			item.Detail = c.releasesURL + " unreachable, using the bundled snapshot"
		}
	default:
		item.Detail = string(l.Origin)
	}

	return item
}
