package media

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var versionSegment = regexp.MustCompile(`^v\d+$`)

// PublicIDFromURL extracts the asset identifier from a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v1712/blog_images/cover.jpg.
// The version segment and file extension are dropped and the result is
// placed under folder when it is not already. Foreign URLs yield "".
func PublicIDFromURL(rawURL, folder string) string {
	u, err := url.Parse(rawURL)
	if err != nil || !strings.HasSuffix(u.Hostname(), "cloudinary.com") {
		return ""
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	upload := -1
	for i, s := range segments {
		if s == "upload" {
			upload = i
			break
		}
	}
	if upload == -1 || upload == len(segments)-1 {
		return ""
	}

	rest := segments[upload+1:]
	if len(rest) > 1 && versionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}

	last := rest[len(rest)-1]
	rest[len(rest)-1] = strings.TrimSuffix(last, path.Ext(last))
	id := strings.Join(rest, "/")

	if folder == "" || strings.HasPrefix(id, folder+"/") {
		return id
	}
	return folder + "/" + id
}
