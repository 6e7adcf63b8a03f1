package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

// Version is the running build's version, set with
// -ldflags "-X github.com/Fepozopo/imgbench/pkg/cli.Version=1.2.3".
var Version = "0.1.0"

// githubAPI is the API root queried for releases.
var githubAPI = "https://api.github.com"

var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

// ParseVersion parses Version as semver, accepting a leading "v".
func ParseVersion() (semver.Version, error) {
	return semver.Parse(strings.TrimPrefix(Version, "v"))
}

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
	Assets     []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// detectLatest queries the GitHub releases of repo and returns the highest
// semver among published, non-prerelease releases. Tags that embed a
// version ("imgbench-v1.2.3") are accepted. It reports false when no
// release qualifies.
func detectLatest(ctx context.Context, client *http.Client, repo string) (*selfupdate.Release, bool, error) {
	apiURL := fmt.Sprintf("%s/repos/%s/releases", githubAPI, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed reading github response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var releases []githubRelease
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, false, fmt.Errorf("failed to decode github releases: %w", err)
	}

	var candidates []*selfupdate.Release
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			match = semverRe.FindString(r.Name)
		}
		v, err := semver.Parse(strings.TrimPrefix(match, "v"))
		if match == "" || err != nil {
			continue
		}
		candidates = append(candidates, &selfupdate.Release{
			Version:  v,
			AssetURL: pickAsset(r),
		})
	}
	if len(candidates) == 0 {
		return nil, false, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Version.GT(candidates[j].Version)
	})
	return candidates[0], true, nil
}

// pickAsset prefers an asset named for a platform and otherwise returns
// the first one.
func pickAsset(r githubRelease) string {
	for _, a := range r.Assets {
		n := strings.ToLower(a.Name)
		if strings.Contains(n, "linux") || strings.Contains(n, "darwin") || strings.Contains(n, "windows") ||
			strings.Contains(n, "amd64") || strings.Contains(n, "arm64") {
			return a.BrowserDownloadURL
		}
	}
	if len(r.Assets) > 0 {
		return r.Assets[0].BrowserDownloadURL
	}
	return ""
}

// CheckForUpdates reports the latest release of repo and, if it is newer
// and confirm agrees, replaces the running executable with it.
func CheckForUpdates(ctx context.Context, w io.Writer, repo string, confirm func(prompt string) (bool, error)) error {
	fmt.Fprintf(w, "Current version: %s\n", Version)
	client := &http.Client{Timeout: 10 * time.Second}
	latest, found, err := detectLatest(ctx, client, repo)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if !found {
		fmt.Fprintf(w, "No releases found for %s.\n", repo)
		return nil
	}
	fmt.Fprintf(w, "Latest version: %s\n", latest.Version)

	current, perr := ParseVersion()
	if perr != nil {
		fmt.Fprintf(w, "warning: could not parse current version %q: %v\n", Version, perr)
	} else if !latest.Version.GT(current) {
		fmt.Fprintf(w, "You are already running the latest version: %s.\n", current)
		return nil
	}
	if latest.AssetURL == "" {
		fmt.Fprintf(w, "A new version (%s) is available but there is no downloadable asset.\n", latest.Version)
		return nil
	}
	ok, err := confirm(fmt.Sprintf("A new version (%s) is available. Update now? (y/N): ", latest.Version))
	if err != nil {
		return fmt.Errorf("failed reading input: %w", err)
	}
	if !ok {
		fmt.Fprintln(w, "Update cancelled.")
		return nil
	}
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	fmt.Fprintln(w, "Updating...")
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Fprintf(w, "Updated to version %s. Restart imgbench to use it.\n", latest.Version)
	return nil
}
