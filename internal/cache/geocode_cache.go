package cache

import (
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/jon4hz/safebadge/internal/config"
)

// GeocodeCachePrefix is the key prefix of reverse geocoding results.
const GeocodeCachePrefix = "geocode-"

// GeocodeCache maps rounded coordinates to a human readable address.
type GeocodeCache = PrefixedCache[string]

// NewGeocodeCache creates the cache used by the reverse geocoder.
func NewGeocodeCache(c *cache.Cache[any], cfg *config.CacheConfig) *GeocodeCache {
	var ttl time.Duration
	if cfg != nil {
		ttl = cfg.TTL
	}
	return NewPrefixedCache[string](c, GeocodeCachePrefix, ttl)
}

// GeocodeKey rounds coordinates to roughly 11m so nearby reports share an entry.
func GeocodeKey(latitude, longitude float64) string {
	return fmt.Sprintf("%.4f,%.4f", latitude, longitude)
}
