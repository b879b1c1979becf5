// Package registry implements the Registry Client described in
// SPEC_FULL.md §4.6: fetch package metadata, select the latest published
// version, verify and cache its tarball. Grounded in
// original_source/src/pkg/registry.rs and tarball.rs for exact semantics
// (dist-tags.latest, dist.{tarball,integrity}, sha512-only integrity), and
// in server/handler.go's httpClient for the transport shape.
package registry

import (
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http2"

	"github.com/esm-dev/breakcheck/internal/cache"
)

// Client fetches and verifies package releases from an npm-compatible
// registry.
type Client struct {
	http     *http.Client
	cacheDir string
	idx      *cache.Index
}

// NewClient builds a Client that caches tarballs directly under cacheDir
// (the caller passes "<dir>/.tmp" per SPEC_FULL.md §5/§6) and records
// verified digests in idx (nil disables the digest fast path, and every
// tarball is fully re-verified on each call).
func NewClient(cacheDir string, idx *cache.Index) *Client {
	transport := &http.Transport{
		Dial: func(network, addr string) (net.Conn, error) {
			conn, err := net.DialTimeout(network, addr, 15*time.Second)
			if err != nil {
				return conn, err
			}
			conn.SetDeadline(time.Now().Add(60 * time.Second))
			return conn, nil
		},
		MaxIdleConnsPerHost:   6,
		ResponseHeaderTimeout: 60 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
	}
	_ = http2.ConfigureTransport(transport)

	return &Client{
		http:     &http.Client{Transport: transport},
		cacheDir: cacheDir,
		idx:      idx,
	}
}

// FetchPackageTarball resolves name's latest published version against
// registryURL and returns its version string plus the gzip-decompressed
// tar bytes of its tarball.
func (c *Client) FetchPackageTarball(registryURL *url.URL, name string) (version string, tarData []byte, err error) {
	release, err := c.fetchLatest(registryURL, name)
	if err != nil {
		return "", nil, err
	}
	tarData, err = c.fetchTarball(name, release)
	if err != nil {
		return "", nil, err
	}
	return release.Version, tarData, nil
}
