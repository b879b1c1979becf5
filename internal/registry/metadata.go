package registry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Masterminds/semver/v3"

	"github.com/esm-dev/breakcheck/internal/bcerr"
)

// Release is the subset of a registry's "latest" version metadata the
// pipeline needs: its version string and where to fetch/verify its
// tarball.
type Release struct {
	Version    string
	TarballURL string
	Integrity  string
}

type registryMetadata struct {
	DistTags map[string]string `json:"dist-tags"`
	Versions map[string]struct {
		Dist struct {
			Tarball   string `json:"tarball"`
			Integrity string `json:"integrity"`
		} `json:"dist"`
	} `json:"versions"`
}

// fetchLatest requests name's package document from registryURL and
// extracts the dist-tags.latest release, following
// fetch_latest_pkg_info_for / get_pkg_tarball_from_dist in
// original_source/src/pkg/registry.rs.
func (c *Client) fetchLatest(registryURL *url.URL, name string) (*Release, error) {
	reqURL := registryURL.JoinPath(name)

	resp, err := c.http.Get(reqURL.String())
	if err != nil {
		return nil, fmt.Errorf("fetching package metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &bcerr.RequestFailed{URL: reqURL.String(), StatusCode: resp.StatusCode}
	}

	var meta registryMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("%w: %v", bcerr.ErrMalformedRegistryPayload, err)
	}

	latest, ok := meta.DistTags["latest"]
	if !ok || latest == "" {
		return nil, fmt.Errorf("%w: missing dist-tags.latest", bcerr.ErrMalformedRegistryPayload)
	}
	if _, err := semver.NewVersion(latest); err != nil {
		return nil, &bcerr.InvalidManifestField{Field: "dist-tags.latest", Reason: "not a valid semver version"}
	}

	v, ok := meta.Versions[latest]
	if !ok || v.Dist.Tarball == "" || v.Dist.Integrity == "" {
		return nil, fmt.Errorf("%w: missing dist info for version %q", bcerr.ErrMalformedRegistryPayload, latest)
	}

	return &Release{Version: latest, TarballURL: v.Dist.Tarball, Integrity: v.Dist.Integrity}, nil
}
