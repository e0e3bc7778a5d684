package vim

import (
	"net/url"
	"strconv"
	"strings"
)

// NormalizeEndpoint derives the SDK endpoint from a raw server address.
// A bare host gets the https scheme; any explicit non-HTTPS scheme is
// rejected before a single network call is made. Trailing slashes and an
// already-present service path are stripped, then the fixed service path is
// appended, so the function is idempotent over its own output.
func NormalizeEndpoint(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &ConfigurationError{Reason: "empty server address"}
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", &ConfigurationError{Reason: "unparseable server address " + strconv.Quote(raw)}
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return "", &ConfigurationError{Reason: "insecure scheme " + strconv.Quote(u.Scheme) + ", only https is supported"}
	}
	if u.Host == "" {
		return "", &ConfigurationError{Reason: "server address has no host"}
	}

	path := strings.TrimRight(u.Path, "/")
	for _, known := range []string{ServicePath, ServicePath + "/vimService", "/mob"} {
		if strings.EqualFold(path, known) {
			path = ""
			break
		}
	}
	if path != "" {
		return "", &ConfigurationError{Reason: "unexpected path " + strconv.Quote(u.Path) + " in server address"}
	}

	return "https://" + u.Host + ServicePath, nil
}
