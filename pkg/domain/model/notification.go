package model

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/domain/types"
)

// NotificationLabel is attached to every created notification and used as a search filter
const NotificationLabel = "vs-insertion"

const notificationTitlePrefix = "[Automated] PRs inserted in VS build "

// NotificationTitle returns the title of the notification for an umbrella build.
// Changing the format requires changing BuildNumberFromTitle too.
func NotificationTitle(build types.BuildNumber) string {
	return notificationTitlePrefix + string(build)
}

// BuildNumberFromTitle recovers the umbrella build number from a notification title
func BuildNumberFromTitle(title string) (types.BuildNumber, bool) {
	suffix, ok := strings.CutPrefix(strings.TrimSpace(title), notificationTitlePrefix)
	if !ok || suffix == "" {
		return "", false
	}
	return types.BuildNumber(suffix), true
}

var buildNumberSegment = regexp.MustCompile(`^\d{8}\.\d+$`)

// ParseBuildNumberFromURL extracts the build number from a drop URL recorded in the release
// manifest, e.g. https://vsdrop.example.com/file/v1/Products/DevDiv/dotnet/roslyn/main/20230101.5;roslyn.vsman
func ParseBuildNumberFromURL(raw string) (types.BuildNumber, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", goerr.Wrap(err, "invalid manifest URL", goerr.V("url", raw))
	}

	path := u.Path
	if idx := strings.Index(path, ";"); idx >= 0 {
		path = path[:idx]
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if buildNumberSegment.MatchString(segments[i]) {
			return types.BuildNumber(segments[i]), nil
		}
	}

	return "", goerr.New("no build number in manifest URL", goerr.V("url", raw))
}
