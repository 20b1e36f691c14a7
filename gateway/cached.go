package gateway

import (
	"context"
	"time"

	"github.com/synanno/maskdraw"
	"github.com/synanno/maskdraw/internal/cache"
)

// CachedGateway caches MaskExists answers of the wrapped Gateway. Saves and auto
// mask downloads made through it mark their raster as present.
type CachedGateway struct {
	maskdraw.Gateway
	cache *cache.Cache[string, bool]
}

// NewCachedGateway wraps gw with a cache of at most size entries (soft limit),
// each trusted for ttl.
func NewCachedGateway(gw maskdraw.Gateway, size int, ttl time.Duration) *CachedGateway {
	return &CachedGateway{
		Gateway: gw,
		cache:   cache.New[string, bool](size, ttl),
	}
}

// MaskExists answers from the cache when it can.
func (c *CachedGateway) MaskExists(ctx context.Context, key maskdraw.MaskKey) (bool, error) {
	path := key.Path()
	if ok, hit := c.cache.Get(path); hit {
		maskdraw.Logger().Debug("exists cache hit", "path", path, "exists", ok)
		return ok, nil
	}
	ok, err := c.Gateway.MaskExists(ctx, key)
	if err != nil {
		return false, err
	}
	c.cache.Set(path, ok)
	return ok, nil
}

// SubmitMask stores the raster and records it as present.
func (c *CachedGateway) SubmitMask(ctx context.Context, m maskdraw.MaskSubmission) (maskdraw.SaveResult, error) {
	res, err := c.Gateway.SubmitMask(ctx, m)
	if err != nil {
		return res, err
	}
	key := maskdraw.MaskKey{
		ImageID:     m.ImageID,
		Kind:        m.Kind,
		Slice:       m.Slice,
		BoundingBox: res.AdjustedBoundingBox,
	}
	c.cache.Set(key.Path(), true)
	return res, nil
}

// QueryAutoMask fetches the auto mask and records whether it exists.
func (c *CachedGateway) QueryAutoMask(ctx context.Context, imageID, middleSlice int) ([]byte, bool, error) {
	data, found, err := c.Gateway.QueryAutoMask(ctx, imageID, middleSlice)
	if err != nil {
		return nil, false, err
	}
	key := maskdraw.MaskKey{ImageID: imageID, Slice: middleSlice, Auto: true}
	c.cache.Set(key.Path(), found)
	return data, found, nil
}

// StoredMarkers forwards to the wrapped Gateway when it keeps marker
// coordinates, and reports none otherwise.
func (c *CachedGateway) StoredMarkers(ctx context.Context, imageID int) (map[maskdraw.Role]maskdraw.MarkerCoordinate, error) {
	if ml, ok := c.Gateway.(maskdraw.MarkerLookup); ok {
		return ml.StoredMarkers(ctx, imageID)
	}
	return nil, nil
}
