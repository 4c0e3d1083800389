// Package toptracks layers pagination and time-range state on top of the
// session controller's refresh-and-retry policy. Items accumulate across
// "load more" fetches within one time range and reset whenever the range
// changes.
package toptracks

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/soundboard/soundboard/session"
	"github.com/soundboard/soundboard/spotify"
	"github.com/soundboard/soundboard/spotify/apiclient"
)

// maxCatalogDepth is the provider's supported ranking depth; load-more stops
// once offset+limit reaches it.
const maxCatalogDepth = 100

const defaultLimit = 20

// TopItemsClient is the slice of the resource client this controller drives.
type TopItemsClient interface {
	GetTopItems(ctx context.Context, tokenType, accessToken string, itemType spotify.ItemType, query apiclient.TopItemsQuery) spotify.Result[spotify.TopTracksPage]
}

// Controller holds the accumulated top-tracks listing for one time range.
type Controller struct {
	mu      sync.Mutex
	session *session.Controller
	api     TopItemsClient

	timeRange spotify.TimeRange
	offset    int
	limit     int
	total     int
	items     []spotify.Track
}

// Option modifies a Controller.
type Option func(*Controller)

// WithLimit overrides the page size.
func WithLimit(limit int) Option {
	return func(c *Controller) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// New builds a Controller over the session controller and resource client.
func New(sessions *session.Controller, api TopItemsClient, options ...Option) (*Controller, error) {
	if sessions == nil {
		return nil, errors.New("[toptracks.New] session controller is required")
	}
	if api == nil {
		return nil, errors.New("[toptracks.New] top items client is required")
	}

	controller := &Controller{
		session:   sessions,
		api:       api,
		timeRange: spotify.TimeRangeMedium,
		limit:     defaultLimit,
	}

	for _, opt := range options {
		opt(controller)
	}

	return controller, nil
}

// LoadInitial fetches the first page for timeRange and replaces the
// accumulated items.
func (c *Controller) LoadInitial(ctx context.Context, timeRange spotify.TimeRange) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timeRange == "" {
		timeRange = c.timeRange
	}
	return c.resetLocked(ctx, timeRange)
}

// LoadMore fetches the next page and appends it, advancing the offset by one
// page. An expired token retries once through the session's refresh policy;
// a second expiry fails to the caller.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	nextOffset := c.offset + c.limit
	page, err := c.fetchLocked(ctx, c.timeRange, nextOffset)
	if err != nil {
		return errors.Wrap(err, "[LoadMore] fetch next page")
	}

	c.offset = nextOffset
	c.total = page.Total
	c.items = append(c.items, page.Items...)
	return nil
}

// ChangeTimeRange re-fetches at offset 0 under the new range, replacing the
// accumulated items. Selecting the current range is a no-op.
func (c *Controller) ChangeTimeRange(ctx context.Context, newRange spotify.TimeRange) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if newRange == c.timeRange {
		return nil
	}
	if !newRange.Valid() {
		return errors.Errorf("[ChangeTimeRange] unsupported time range %q", newRange)
	}
	return c.resetLocked(ctx, newRange)
}

func (c *Controller) resetLocked(ctx context.Context, timeRange spotify.TimeRange) error {
	page, err := c.fetchLocked(ctx, timeRange, 0)
	if err != nil {
		return errors.Wrap(err, "[resetLocked] fetch first page")
	}

	c.timeRange = timeRange
	c.offset = page.Offset
	c.total = page.Total
	c.items = append([]spotify.Track(nil), page.Items...)
	return nil
}

func (c *Controller) fetchLocked(ctx context.Context, timeRange spotify.TimeRange, offset int) (*spotify.TopTracksPage, error) {
	query := apiclient.TopItemsQuery{TimeRange: timeRange, Limit: c.limit, Offset: offset}

	result, err := session.WithRefreshRetry(ctx, c.session, func(ctx context.Context, tokenType, accessToken string) spotify.Result[spotify.TopTracksPage] {
		return c.api.GetTopItems(ctx, tokenType, accessToken, spotify.ItemTypeTracks, query)
	})
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, result.Err()
	}
	return result.Payload, nil
}

// Items returns a copy of the accumulated listing.
func (c *Controller) Items() []spotify.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]spotify.Track(nil), c.items...)
}

// TimeRange reports the current range selection.
func (c *Controller) TimeRange() spotify.TimeRange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeRange
}

// Offset reports the offset of the most recently fetched page.
func (c *Controller) Offset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

// HasMore reports whether another page can be offered, bounded by both the
// listing's total and the catalog's supported depth.
func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.offset + c.limit
	return next < maxCatalogDepth && next < c.total
}
