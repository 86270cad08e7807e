package videoid

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"thirdcoast.systems/shortsdl/pkg/videoinfo"
)

const youtubeDomain = "youtube.com"

// Well-known host aliases. Key: input host. Value: canonical domain.
var canonicalDomainByHost = map[string]string{
	"youtube.com":              youtubeDomain,
	"www.youtube.com":          youtubeDomain,
	"m.youtube.com":            youtubeDomain,
	"music.youtube.com":        youtubeDomain,
	"youtube-nocookie.com":     youtubeDomain,
	"www.youtube-nocookie.com": youtubeDomain,
	"youtu.be":                 youtubeDomain,
}

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ResolveCanonicalDomain returns the canonical domain for host.
//
// host should be a hostname without port.
func ResolveCanonicalDomain(host string) string {
	h := normalizeHost(host)
	if h == "" {
		return ""
	}
	if c, ok := canonicalDomainByHost[h]; ok {
		return c
	}
	return h
}

// NamespaceUUIDForDomain returns a deterministic UUIDv5 namespace for a domain.
func NamespaceUUIDForDomain(domain string) uuid.UUID {
	d := strings.TrimSpace(strings.ToLower(domain))
	d = strings.TrimSuffix(d, ".")
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(d))
}

// VideoUUID returns a deterministic UUIDv5 for a (domain, videoID) pair.
func VideoUUID(domain string, videoID string) uuid.UUID {
	ns := NamespaceUUIDForDomain(domain)
	return uuid.NewSHA1(ns, []byte(strings.TrimSpace(videoID)))
}

// Canonical is a user-supplied URL reduced to a single video.
type Canonical struct {
	VideoID string
	// URL is always https://www.youtube.com/watch?v={VideoID}.
	URL string
	// Key identifies the video independently of the URL shape it arrived in.
	Key uuid.UUID
}

// Canonicalize normalizes watch, Shorts, youtu.be, embed, /v/ and /live/ URLs
// to the canonical watch URL. Anything that does not yield a video ID fails
// with an InvalidUrl error rather than being forwarded to yt-dlp.
func Canonicalize(raw string) (Canonical, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Canonical{}, videoinfo.Errorf(videoinfo.KindInvalidURL, "URL is required")
	}

	id, err := ExtractYouTubeVideoID(raw)
	if err != nil {
		return Canonical{}, err
	}

	return Canonical{
		VideoID: id,
		URL:     WatchURL(id),
		Key:     VideoUUID(youtubeDomain, id),
	}, nil
}

// WatchURL builds the canonical watch URL for a video ID.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(id)
}

// ExtractYouTubeVideoID extracts the YouTube video ID from a URL. A missing
// scheme is treated as https.
func ExtractYouTubeVideoID(urlStr string) (string, error) {
	urlStr = strings.TrimSpace(urlStr)
	if urlStr == "" {
		return "", videoinfo.Errorf(videoinfo.KindInvalidURL, "URL is required")
	}

	u, err := url.Parse(urlStr)
	if err == nil && u.Host == "" && u.Scheme == "" {
		u, err = url.Parse("https://" + urlStr)
	}
	if err != nil {
		return "", &videoinfo.Error{Kind: videoinfo.KindInvalidURL, Detail: "Invalid URL", Err: err}
	}

	host := normalizeHost(u.Host)
	if ResolveCanonicalDomain(host) != youtubeDomain {
		return "", videoinfo.Errorf(videoinfo.KindInvalidURL, "Not a YouTube URL")
	}

	id := ""
	switch {
	case host == "youtu.be":
		id = firstPathSegment(u.Path)
	case u.Query().Get("v") != "":
		id = u.Query().Get("v")
	default:
		for _, prefix := range []string{"/shorts/", "/embed/", "/v/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id = firstPathSegment(strings.TrimPrefix(u.Path, prefix))
				break
			}
		}
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return "", videoinfo.Errorf(videoinfo.KindInvalidURL, "Could not find a video ID in the URL")
	}
	if !videoIDRe.MatchString(id) {
		return "", videoinfo.Errorf(videoinfo.KindInvalidURL, "Invalid video ID %q", id)
	}
	return id, nil
}

func normalizeHost(hostport string) string {
	h := strings.TrimSpace(strings.ToLower(hostport))
	if h == "" {
		return ""
	}
	// url.URL.Host may include port.
	if strings.Contains(h, ":") {
		if parsed, err := url.Parse("//" + h); err == nil {
			if parsed.Hostname() != "" {
				h = parsed.Hostname()
			}
		}
	}
	h = strings.TrimSuffix(h, ".")
	return h
}

func firstPathSegment(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return ""
	}
	seg, _, _ := strings.Cut(p, "/")
	return strings.TrimSpace(seg)
}
