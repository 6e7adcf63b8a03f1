package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blang/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releasesJSON = `[
  {"tag_name": "v1.2.0", "assets": [{"name": "imgbench_linux_amd64.tar.gz", "browser_download_url": "https://example.test/1.2.0"}]},
  {"tag_name": "imgbench-v1.10.0", "assets": [
    {"name": "checksums.txt", "browser_download_url": "https://example.test/sums"},
    {"name": "imgbench_darwin_arm64.zip", "browser_download_url": "https://example.test/1.10.0"}
  ]},
  {"tag_name": "v2.0.0", "prerelease": true},
  {"tag_name": "v3.0.0", "draft": true},
  {"tag_name": "nightly", "name": "nightly build"}
]`

func withReleaseServer(t *testing.T, status int, body string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/someone/imgbench/releases", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	old := githubAPI
	githubAPI = srv.URL
	t.Cleanup(func() { githubAPI = old })
}

func withVersion(t *testing.T, v string) {
	t.Helper()
	old := Version
	Version = v
	t.Cleanup(func() { Version = old })
}

func TestDetectLatestPicksHighestStable(t *testing.T) {
	withReleaseServer(t, http.StatusOK, releasesJSON)
	rel, found, err := detectLatest(context.Background(), http.DefaultClient, "someone/imgbench")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, semver.MustParse("1.10.0"), rel.Version)
	assert.Equal(t, "https://example.test/1.10.0", rel.AssetURL)
}

func TestDetectLatestNoReleases(t *testing.T) {
	withReleaseServer(t, http.StatusOK, `[]`)
	_, found, err := detectLatest(context.Background(), http.DefaultClient, "someone/imgbench")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDetectLatestHTTPError(t *testing.T) {
	withReleaseServer(t, http.StatusInternalServerError, "boom")
	_, _, err := detectLatest(context.Background(), http.DefaultClient, "someone/imgbench")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestCheckForUpdatesUpToDate(t *testing.T) {
	withReleaseServer(t, http.StatusOK, releasesJSON)
	withVersion(t, "v1.10.0")
	var out bytes.Buffer
	err := CheckForUpdates(context.Background(), &out, "someone/imgbench", func(string) (bool, error) {
		t.Fatal("should not prompt")
		return false, nil
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "already running the latest version: 1.10.0")
}

func TestCheckForUpdatesDeclined(t *testing.T) {
	withReleaseServer(t, http.StatusOK, releasesJSON)
	withVersion(t, "1.0.0")
	var out bytes.Buffer
	var asked string
	err := CheckForUpdates(context.Background(), &out, "someone/imgbench", func(p string) (bool, error) {
		asked = p
		return false, nil
	})
	require.NoError(t, err)
	assert.Contains(t, asked, "1.10.0")
	assert.Contains(t, out.String(), "Update cancelled.")
}

func TestParseVersion(t *testing.T) {
	withVersion(t, "v0.3.1")
	v, err := ParseVersion()
	require.NoError(t, err)
	assert.Equal(t, semver.MustParse("0.3.1"), v)

	withVersion(t, "dev")
	_, err = ParseVersion()
	assert.Error(t, err)
}
