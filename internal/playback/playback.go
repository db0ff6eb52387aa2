package playback

import (
	"fmt"
	"strings"
)

// Source says where the host got the item from. Decided once per playback
// by Classify and stored on the record.
type Source string

const (
	SourceKodiLibrary  Source = "kodi_library"
	SourcePVRLive      Source = "pvr_live"
	SourcePVRRecording Source = "pvr_recording"
	SourceAddon        Source = "addon"
	SourceFile         Source = "file"
)

// MediaType is the coarse media kind of a record.
type MediaType string

const (
	MediaEpisode MediaType = "episode"
	MediaMovie   MediaType = "movie"
	MediaVideo   MediaType = "video"
)

// Playback is one observed or remembered playback session. Field names and
// order define the persisted JSON shape; pointer fields are null when the
// host never reported a value. Sentinel numbers like -1 are never stored
// for identifiers.
//
// totaltime and duration both hold the total length in seconds; the
// duplication is kept for compatibility with two historical consumers.
type Playback struct {
	Path   string    `json:"path"`
	File   string    `json:"file"`
	Source Source    `json:"source"`
	Type   MediaType `json:"type"`

	DBID         *int `json:"dbid"`
	TVShowDBID   *int `json:"tvshowdbid"`
	TotalSeasons *int `json:"totalseasons"`

	Title     string `json:"title"`
	Label     string `json:"label"`
	Label2    string `json:"label2"`
	ShowTitle string `json:"showtitle"`
	Season    *int   `json:"season"`
	Episode   *int   `json:"episode"`
	Year      *int   `json:"year"`

	Thumbnail string `json:"thumbnail"`
	Fanart    string `json:"fanart"`
	Poster    string `json:"poster"`
	Icon      string `json:"icon"`

	ResumeTime *float64 `json:"resumetime"`
	TotalTime  *float64 `json:"totaltime"`
	Duration   *float64 `json:"duration"`

	ChannelName        string `json:"channelname"`
	ChannelNumberLabel string `json:"channelnumberlabel"`
	ChannelGroup       string `json:"channelgroup"`
}

// New seeds a record from the raw player item. Path starts out equal to
// File; enrichment may replace it with a folder-aware locator.
func New(file, label, label2 string) *Playback {
	return &Playback{
		Path:   file,
		File:   file,
		Type:   MediaVideo,
		Label:  label,
		Label2: label2,
	}
}

// Update is a typed partial update. Only non-nil fields are applied.
type Update struct {
	Title      *string
	ResumeTime *float64
	TotalTime  *float64
}

// Apply copies the set fields of u onto p. TotalTime also refreshes
// duration, which mirrors it.
func (p *Playback) Apply(u Update) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.ResumeTime != nil {
		p.ResumeTime = u.ResumeTime
	}
	if u.TotalTime != nil {
		p.TotalTime = u.TotalTime
		p.Duration = u.TotalTime
	}
}

// Copy returns a shallow copy. Pointer fields still reference the same
// numbers; updates replace those pointers, never rewrite them, so copies
// are safe to hand across goroutines.
func (p *Playback) Copy() *Playback {
	c := *p
	return &c
}

// IsEpisode reports whether the record belongs to a TV show.
func (p *Playback) IsEpisode() bool {
	return p.Type == MediaEpisode
}

// IsPVR reports whether the record came from the host's PVR, live or
// recorded.
func (p *Playback) IsPVR() bool {
	return p.Source == SourcePVRLive || p.Source == SourcePVRRecording
}

// LaunchTarget is the locator that starts this record again. Library and
// plain-file records relaunch via the resolved file; addon and PVR
// records via the path.
func (p *Playback) LaunchTarget() string {
	switch p.Source {
	case SourceAddon, SourcePVRLive, SourcePVRRecording:
		return p.Path
	}
	return p.File
}

// base is the fallback chain every display label builds on.
func (p *Playback) base() string {
	if p.Title != "" {
		return p.Title
	}
	if p.Label != "" {
		return p.Label
	}
	if p.ChannelName != "" {
		return p.ChannelName
	}
	if seg := lastPathSegment(p.Path); seg != "" {
		return seg
	}
	return "Unknown"
}

// DisplayLabel renders the one-line label shown in listings, computed on
// demand and never stored. Precedence: show with season/episode, show
// alone, channel, base. Addon items get an " (Addon)" suffix on whichever
// form applied.
func (p *Playback) DisplayLabel() string {
	base := p.base()
	label := base
	switch {
	case p.ShowTitle != "" && isKnown(p.Season) && isKnown(p.Episode):
		label = fmt.Sprintf("%s (%dx%02d) - %s", p.ShowTitle, *p.Season, *p.Episode, base)
	case p.ShowTitle != "" && isKnown(p.Season):
		label = fmt.Sprintf("%s (%dx?) - %s", p.ShowTitle, *p.Season, base)
	case p.ShowTitle != "":
		label = fmt.Sprintf("%s - %s", p.ShowTitle, base)
	case p.ChannelName != "":
		if p.Source == SourcePVRLive {
			label = fmt.Sprintf("%s (PVR Live)", p.ChannelName)
		} else {
			label = fmt.Sprintf("%s (PVR Recording %s)", base, p.ChannelName)
		}
	}
	if p.Source == SourceAddon {
		label += " (Addon)"
	}
	return label
}

// ShortLabel is the show/season/episode portion of DisplayLabel without
// the base suffix, for narrow UI slots.
func (p *Playback) ShortLabel() string {
	switch {
	case p.ShowTitle != "" && isKnown(p.Season) && isKnown(p.Episode):
		return fmt.Sprintf("%s (%dx%02d)", p.ShowTitle, *p.Season, *p.Episode)
	case p.ShowTitle != "" && isKnown(p.Season):
		return fmt.Sprintf("%s (%dx?)", p.ShowTitle, *p.Season)
	case p.ShowTitle != "":
		return p.ShowTitle
	}
	return p.base()
}

func isKnown(n *int) bool {
	return n != nil && *n >= 0
}

func lastPathSegment(path string) string {
	s := strings.TrimRight(path, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return s
}
