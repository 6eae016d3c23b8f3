// Package catalog is the reservation service's client for the resource
// service.  Lookups go through Redis when available so hot resources do
// not hammer the catalog on every booking.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campushub/reservation/internal/model"
)

// ErrNotFound is returned when the catalog has no such resource.
var ErrNotFound = errors.New("resource not found")

// UnknownResourceName is the placeholder used when the catalog cannot be
// reached.  Bookings proceed with it rather than failing on a catalog
// outage.
const UnknownResourceName = "Unknown Resource"

// Client fetches resources from the resource service.
type Client struct {
	base string
	http *http.Client
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

// New returns a Client.  rdb may be nil, in which case every lookup goes
// to the resource service.
func New(baseURL string, rdb *redis.Client, log zerolog.Logger) *Client {
	return &Client{
		base: baseURL,
		http: &http.Client{Timeout: 5 * time.Second},
		rdb:  rdb,
		ttl:  5 * time.Minute,
		log:  log,
	}
}

func (c *Client) cacheKey(id string) string { return "resource:" + id }

// Get returns the resource, consulting the cache first.  token is the
// caller's bearer token, passed through to the resource service.
func (c *Client) Get(ctx context.Context, id, token string) (model.Resource, error) {
	if c.rdb != nil {
		if raw, err := c.rdb.Get(ctx, c.cacheKey(id)).Bytes(); err == nil {
			var res model.Resource
			if err := json.Unmarshal(raw, &res); err == nil {
				return res, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/v1/resources/%s", c.base, id), nil)
	if err != nil {
		return model.Resource{}, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return model.Resource{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return model.Resource{}, ErrNotFound
	default:
		io.Copy(io.Discard, resp.Body)
		return model.Resource{}, fmt.Errorf("resource service returned %d", resp.StatusCode)
	}

	var res model.Resource
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return model.Resource{}, err
	}

	if c.rdb != nil {
		if raw, err := json.Marshal(res); err == nil {
			if err := c.rdb.Set(ctx, c.cacheKey(id), raw, c.ttl).Err(); err != nil {
				c.log.Warn().Err(err).Str("resource_id", id).Msg("resource cache write failed")
			}
		}
	}
	return res, nil
}

// ResourceName resolves a display name for the resource, degrading to a
// placeholder when the catalog is unreachable.  A genuine 404 is still
// reported so bookings against deleted resources fail.
func (c *Client) ResourceName(ctx context.Context, id, token string) (string, error) {
	res, err := c.Get(ctx, id, token)
	if errors.Is(err, ErrNotFound) {
		return "", err
	}
	if err != nil {
		c.log.Warn().Err(err).Str("resource_id", id).Msg("catalog lookup failed, using placeholder")
		return UnknownResourceName, nil
	}
	return res.Name, nil
}

// Invalidate drops the cached entry for a resource.
func (c *Client) Invalidate(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.cacheKey(id)).Err(); err != nil {
		c.log.Warn().Err(err).Str("resource_id", id).Msg("cache invalidate failed")
	}
}
