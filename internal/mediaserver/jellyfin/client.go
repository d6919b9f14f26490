package jellyfin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/domain"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultCDNBaseURL = "https://artworks.thetvdb.com"

	// latestFields is the field set requested for every latest-items call
	latestFields = "ProviderIds,Overview,RemoteTrailers,CommunityRating,Studios,PremiereDate,Genres,ChildCount,ProductionYear,DateCreated,ParentId"

	// Thumbnail bounds requested for every artwork download
	imageMaxHeight = 360
	imageMaxWidth  = 640
	imageQuality   = 90
)

// Options holds the connection settings for a Jellyfin server
type Options struct {
	Host         string
	Port         int
	SSL          bool
	APIKey       string
	UserID       string
	MaxItems     int
	ShowEpisodes bool // request ungrouped episodes (GroupItems=False)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.With("component", "jellyfin")
		}
	}
}

// WithCDNBaseURL sets the artwork CDN base URL (for testing).
func WithCDNBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.cdnBaseURL = baseURL
	}
}

// Client talks to the Jellyfin REST API. Every call is best-effort: failures are
// logged, reported as domain.ErrServerOffline and reflected in Status.
type Client struct {
	opts       Options
	httpClient *http.Client
	cdnBaseURL string
	logger     *slog.Logger

	mu     sync.RWMutex
	status string
}

// NewClient creates a new Jellyfin API client
func NewClient(opts Options, options ...Option) *Client {
	c := &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		cdnBaseURL: defaultCDNBaseURL,
		logger:     slog.Default().With("component", "jellyfin"),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Host returns the configured server host
func (c *Client) Host() string {
	return c.opts.Host
}

// Status returns "Online" after a successful call or "<host> cannot be reached" after a failed one
func (c *Client) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Client) setStatus(status string) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

func (c *Client) markUnreachable() {
	c.setStatus(domain.UnreachableState(c.opts.Host))
}

// BaseURL returns scheme, host and port of the server
func (c *Client) BaseURL() string {
	scheme := "http"
	if c.opts.SSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.opts.Host, c.opts.Port)
}

// DeepLink returns a URL opening itemID in the Jellyfin web client
func (c *Client) DeepLink(itemID string) string {
	return fmt.Sprintf("%s/web/index.html#!/details?id=%s", c.BaseURL(), itemID)
}

// ImageURL returns the download URL for one artwork type of an item
func (c *Client) ImageURL(itemID, imageType string) string {
	return fmt.Sprintf("%s/Items/%s/Images/%s?maxHeight=%d&maxWidth=%d&quality=%d&userId=%s&api_key=%s",
		c.BaseURL(), url.PathEscape(itemID), url.PathEscape(imageType),
		imageMaxHeight, imageMaxWidth, imageQuality,
		url.QueryEscape(c.opts.UserID), url.QueryEscape(c.opts.APIKey))
}

// FallbackImageURL returns the TVDB artwork CDN URL for an external id.
// imageKind is "poster" or "background"; mediaKind is a CDN path segment such as "movies" or "series".
func (c *Client) FallbackImageURL(externalID, imageKind, mediaKind string) string {
	return fmt.Sprintf("%s/banners/%s/%s/%ss/%s.jpg", c.cdnBaseURL, mediaKind, externalID, imageKind, externalID)
}

// doRequest performs a GET against the Jellyfin API and returns the body of a 200 response.
// Transport failures and non-200 statuses both map to domain.ErrServerOffline.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.opts.APIKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.BaseURL(), path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Info("making API call", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("host is not available", "host", c.opts.Host, "error", err)
		c.markUnreachable()
		return nil, fmt.Errorf("%s: %w", path, domain.ErrServerOffline)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("failed to read response", "path", path, "error", err)
		c.markUnreachable()
		return nil, fmt.Errorf("%s: %w", path, domain.ErrServerOffline)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Info("could not reach url", "path", path, "status", resp.StatusCode)
		c.markUnreachable()
		return nil, fmt.Errorf("%s: status %d: %w", path, resp.StatusCode, domain.ErrServerOffline)
	}

	return body, nil
}

// ListCategories returns every library view visible to the configured user
func (c *Client) ListCategories(ctx context.Context) ([]domain.LibraryCategory, error) {
	query := url.Values{}
	query.Set("userId", c.opts.UserID)

	body, err := c.doRequest(ctx, "/UserViews", query)
	if err != nil {
		return nil, err
	}

	var resp ItemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("failed to parse views", "error", err)
		return nil, fmt.Errorf("failed to parse views: %w: %v", domain.ErrBadResponse, err)
	}

	c.setStatus(domain.StateOnline)
	return MapCategories(resp.Items), nil
}

// FetchLatest returns the most recently added records below parentID, with
// artwork for each record (and its parent) attached.
func (c *Client) FetchLatest(ctx context.Context, parentID string) ([]domain.MediaRecord, error) {
	query := url.Values{}
	query.Set("Limit", strconv.Itoa(c.opts.MaxItems))
	query.Set("Fields", latestFields)
	query.Set("ParentId", parentID)
	if c.opts.ShowEpisodes {
		query.Set("GroupItems", "False")
	}

	path := fmt.Sprintf("/Users/%s/Items/Latest", url.PathEscape(c.opts.UserID))
	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var items []Item
	if err := json.Unmarshal(body, &items); err != nil {
		c.logger.Error("failed to parse latest items", "parent_id", parentID, "error", err)
		return nil, fmt.Errorf("failed to parse latest items: %w: %v", domain.ErrBadResponse, err)
	}

	if c.opts.MaxItems > 0 && len(items) > c.opts.MaxItems {
		items = items[:c.opts.MaxItems]
	}
	c.setStatus(domain.StateOnline)

	records := MapRecords(items)
	for i := range records {
		c.attachImages(ctx, &records[i])
	}

	c.logger.Debug("fetched latest items", "parent_id", parentID, "count", len(records))
	return records, nil
}

// attachImages downloads every artwork type for a record and, when it has one, its parent
func (c *Client) attachImages(ctx context.Context, record *domain.MediaRecord) {
	for _, imageType := range domain.ImageTypes {
		data := c.FetchImageBytes(ctx, c.ImageURL(record.ID, imageType))
		record.SetImageBytes(domain.ImageKey(imageType, false), data)
	}
	if record.ParentID == "" {
		return
	}
	for _, imageType := range domain.ImageTypes {
		data := c.FetchImageBytes(ctx, c.ImageURL(record.ParentID, imageType))
		record.SetImageBytes(domain.ImageKey(imageType, true), data)
	}
}

// FetchImageBytes downloads an image. It returns the body on HTTP 200 and
// empty bytes on any other status or transport failure.
func (c *Client) FetchImageBytes(ctx context.Context, imageURL string) []byte {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		c.logger.Error("failed to create image request", "error", err)
		return []byte{}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("failed to open image url", "error", err)
		return []byte{}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusForbidden:
		c.logger.Warn("image not available", "url", redactKey(imageURL), "status", resp.StatusCode)
		return []byte{}
	default:
		c.logger.Error("failed to open image url", "url", redactKey(imageURL), "status", resp.StatusCode)
		return []byte{}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("failed to read image", "url", redactKey(imageURL), "error", err)
		return []byte{}
	}
	return data
}

// redactKey strips the api_key query parameter from a URL before it is logged
func redactKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
