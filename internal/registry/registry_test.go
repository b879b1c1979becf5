package registry

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func buildTarball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	for name, content := range files {
		hdr := &tar.Header{Name: "package/" + name, Mode: 0644, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}

	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	if _, err := gw.Write(tarBuf.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	return gzBuf.Bytes()
}

func integrityOf(data []byte) string {
	sum := sha512.Sum512(data)
	return "sha512-" + base64.StdEncoding.EncodeToString(sum[:])
}

func newTestServer(t *testing.T, pkgName string, tarData []byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	tarballPath := "/" + pkgName + "/-/" + pkgName + "-1.2.3.tgz"
	mux.HandleFunc("/"+pkgName, func(w http.ResponseWriter, r *http.Request) {
		meta := registryMetadata{
			DistTags: map[string]string{"latest": "1.2.3"},
		}
		meta.Versions = map[string]struct {
			Dist struct {
				Tarball   string `json:"tarball"`
				Integrity string `json:"integrity"`
			} `json:"dist"`
		}{
			"1.2.3": {Dist: struct {
				Tarball   string `json:"tarball"`
				Integrity string `json:"integrity"`
			}{Tarball: "http://" + r.Host + tarballPath, Integrity: integrityOf(tarData)}},
		}
		json.NewEncoder(w).Encode(meta)
	})
	mux.HandleFunc(tarballPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write(tarData)
	})
	return httptest.NewServer(mux)
}

func TestFetchPackageTarball(t *testing.T) {
	tarData := buildTarball(t, map[string]string{"package.json": `{"name":"widget","version":"1.2.3"}`})
	srv := newTestServer(t, "widget", tarData)
	defer srv.Close()

	client := NewClient(t.TempDir(), nil)
	registryURL, _ := url.Parse(srv.URL + "/")

	version, data, err := client.FetchPackageTarball(registryURL, "widget")
	if err != nil {
		t.Fatal(err)
	}
	if version != "1.2.3" {
		t.Fatalf("expected version 1.2.3, got %s", version)
	}
	if !bytes.Contains(data, []byte(`"name":"widget"`)) {
		t.Fatalf("expected decompressed tarball contents, got %q", data)
	}
}

func TestFetchPackageTarballCachesAcrossCalls(t *testing.T) {
	tarData := buildTarball(t, map[string]string{"package.json": `{"name":"widget","version":"1.2.3"}`})
	srv := newTestServer(t, "widget", tarData)
	defer srv.Close()

	client := NewClient(t.TempDir(), nil)
	registryURL, _ := url.Parse(srv.URL + "/")

	if _, _, err := client.FetchPackageTarball(registryURL, "widget"); err != nil {
		t.Fatal(err)
	}
	// second call should hit the on-disk cache, not a second download; since
	// the handler always serves the same bytes this just exercises the path
	// without asserting on request counts.
	if _, _, err := client.FetchPackageTarball(registryURL, "widget"); err != nil {
		t.Fatal(err)
	}
}

func TestParseIntegrityRejectsUnsupportedAlgorithm(t *testing.T) {
	_, _, err := parseIntegrity("sha1-deadbeef")
	if err == nil {
		t.Fatal("expected an error for a non-sha512 algorithm")
	}
}

func TestVerifyDigest(t *testing.T) {
	data := []byte("hello world")
	sum := sha512.Sum512(data)
	if !verifyDigest(data, sum[:]) {
		t.Fatal("expected digest to verify against its own sum")
	}
	if verifyDigest(data, sum[:len(sum)-1]) {
		t.Fatal("expected a truncated digest to fail verification")
	}
}

func TestTarballFileNameFoldsScopeSlash(t *testing.T) {
	got := tarballFileName("@scope/name", "1.0.0")
	if got != "@scope+name-1.0.0.tar.gz" {
		t.Fatalf("got %q", got)
	}
}
