package version

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	hashiVersion "github.com/hashicorp/go-version"
)

// host carrying the published VERSION file; tests point this at a local server
var latestVersionHost = "https://vulncert.io"

const latestVersionPath = "/releases/latest/VERSION"

// IsUpdateAvailable reports whether a release newer than the running build has been
// published, and if so which version it is.
func IsUpdateAvailable() (bool, string, error) {
	current := FromBuild().Version
	if current == valueNotProvided {
		// unstamped dev builds have no version to compare against
		return false, "", nil
	}
	currentVersion, err := hashiVersion.NewVersion(current)
	if err != nil {
		return false, "", fmt.Errorf("failed to parse current application version: %w", err)
	}

	latestVersion, err := fetchLatestApplicationVersion()
	if err != nil {
		return false, "", err
	}

	if latestVersion.GreaterThan(currentVersion) {
		return true, latestVersion.String(), nil
	}
	return false, "", nil
}

func fetchLatestApplicationVersion() (*hashiVersion.Version, error) {
	resp, err := http.Get(latestVersionHost + latestVersionPath)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest version: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d on fetching latest version: %s", resp.StatusCode, resp.Status)
	}

	contents, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read latest version: %w", err)
	}

	return hashiVersion.NewVersion(strings.TrimSpace(string(contents)))
}
