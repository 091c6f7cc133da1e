package storage

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectKey builds "<folder>/<unix-ms>-<sanitized filename>"
func ObjectKey(folder, filename string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = unsafeKeyChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "file"
	}
	return fmt.Sprintf("%s/%d-%s", strings.Trim(folder, "/"), now.UnixMilli(), name)
}

// keyFromURL returns the object key of a public URL under baseURL
func keyFromURL(baseURL, raw string) (string, bool) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host != base.Host {
		return "", false
	}
	prefix := strings.TrimSuffix(base.Path, "/") + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimPrefix(u.Path, prefix))
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}
