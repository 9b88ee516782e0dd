package database

import (
	"github.com/bradfitz/gomemcache/memcache"
)

// NewMemcached returns the client backing the public job-listing cache.
func NewMemcached(server string) *memcache.Client {
	return memcache.New(server)
}
