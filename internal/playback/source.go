package playback

import (
	"net"
	"net/url"
	"strings"
)

// Signals is the one-shot snapshot of host state the classifier runs on.
// Callers gather it once per playback so that classification stays a pure
// function: identical signals always yield the identical source.
type Signals struct {
	DBID          *int   // library database id when the host resolved one
	LiveTV        bool   // host reports live TV playback
	LiveRadio     bool   // host reports live radio playback
	Path          string // locator of the playing item
	ListItemPath  string // path of the focused list item, if any
	AddonID       string // addon identifier property on the playing item
	ContainerPath string // folder path of the containing listing
}

// Classify decides the source of a playback. Priority order, first match
// wins: library id, live broadcast, recording path, addon heuristics,
// plain file.
func Classify(sig Signals) Source {
	switch {
	case sig.DBID != nil && *sig.DBID > 0:
		return SourceKodiLibrary
	case sig.LiveTV || sig.LiveRadio:
		return SourcePVRLive
	case isPVRRecordingPath(sig.Path):
		return SourcePVRRecording
	default:
		if _, ok := MatchedAddonRule(sig); ok {
			return SourceAddon
		}
		return SourceFile
	}
}

// addonRules is the ordered heuristic for addon-streamed content. No
// single signal identifies it reliably, so the rules are tried in order
// and the first match decides. Kept as data so order and coverage stay
// inspectable and each rule testable on its own.
var addonRules = []struct {
	Name  string
	Match func(Signals) bool
}{
	{"plugin-locator", func(s Signals) bool {
		return hasScheme(s.Path, "plugin://")
	}},
	{"plugin-listitem", func(s Signals) bool {
		return hasScheme(s.ListItemPath, "plugin://")
	}},
	{"addon-id-property", func(s Signals) bool {
		return s.AddonID != ""
	}},
	{"plugin-container", func(s Signals) bool {
		return hasScheme(s.ContainerPath, "plugin://")
	}},
	{"http-with-addon-context", func(s Signals) bool {
		if !isHTTPURL(s.Path) || looksCloudStorage(s.Path) {
			return false
		}
		return hasAddonHint(s.Path) ||
			s.AddonID != "" ||
			hasScheme(s.ContainerPath, "plugin://") ||
			isLoopbackURL(s.Path)
	}},
}

// MatchedAddonRule reports which addon heuristic, if any, applies to the
// signals. The name is meant for debug logging.
func MatchedAddonRule(sig Signals) (string, bool) {
	for _, r := range addonRules {
		if r.Match(sig) {
			return r.Name, true
		}
	}
	return "", false
}

func isPVRRecordingPath(path string) bool {
	p := strings.ToLower(path)
	if strings.HasPrefix(p, "pvr://recordings/") {
		return true
	}
	return strings.HasPrefix(p, "pvr://") && strings.Contains(p, "/recordings/")
}

func hasScheme(s, scheme string) bool {
	return len(s) >= len(scheme) && strings.EqualFold(s[:len(scheme)], scheme)
}

func isHTTPURL(s string) bool {
	return hasScheme(s, "http://") || hasScheme(s, "https://")
}

// cloudHostMarkers rule out remote storage mounts that stream over http
// but are not addons.
var cloudHostMarkers = []string{
	"dropbox",
	"drive.google",
	"docs.google",
	"onedrive",
	"1drv.",
	"box.com",
	"mega.nz",
	"pcloud",
}

func looksCloudStorage(rawURL string) bool {
	p := strings.ToLower(rawURL)
	if strings.Contains(p, "/dav/") || strings.Contains(p, "webdav") {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, marker := range cloudHostMarkers {
		if strings.Contains(host, marker) {
			return true
		}
	}
	return false
}

func hasAddonHint(rawURL string) bool {
	p := strings.ToLower(rawURL)
	return strings.Contains(p, "plugin") || strings.Contains(p, "addon")
}

// Local addon proxy servers stream from loopback addresses.
func isLoopbackURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}
