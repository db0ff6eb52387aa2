package playback

// DisplayEntry is the contract handed to UI layers to render one playable
// list row.
type DisplayEntry struct {
	Target     string            `json:"target"`
	Label      string            `json:"label"`
	ShortLabel string            `json:"shortLabel"`
	Playable   bool              `json:"playable"`
	Art        map[string]string `json:"art,omitempty"`
	Video      *VideoDetails     `json:"video,omitempty"`
	Resume     *ResumePoint      `json:"resume,omitempty"`
}

// VideoDetails is the structured metadata block. Live channels are not
// videos, so pvr_live entries carry none.
type VideoDetails struct {
	MediaType       string  `json:"mediatype"`
	DBID            *int    `json:"dbid"`
	Title           string  `json:"title"`
	Path            string  `json:"path"`
	Year            *int    `json:"year"`
	ShowTitle       string  `json:"showtitle"`
	Episode         *int    `json:"episode"`
	Season          *int    `json:"season"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// ResumePoint renders unknowns as zero. Downstream resume logic requires
// numbers here, never null.
type ResumePoint struct {
	ResumeSeconds float64 `json:"resumeSeconds"`
	TotalSeconds  float64 `json:"totalSeconds"`
}

// BuildDisplayEntry converts a record into its display entry.
func BuildDisplayEntry(pb *Playback) DisplayEntry {
	entry := DisplayEntry{
		Target:     pb.LaunchTarget(),
		Label:      pb.DisplayLabel(),
		ShortLabel: pb.ShortLabel(),
		Playable:   true,
		Art:        artBundle(pb),
	}
	if pb.Source == SourcePVRLive {
		return entry
	}

	dbid := pb.DBID
	if pb.IsEpisode() {
		dbid = pb.TVShowDBID
	}
	entry.Video = &VideoDetails{
		MediaType:       string(pb.Type),
		DBID:            dbid,
		Title:           pb.Title,
		Path:            pb.Path,
		Year:            pb.Year,
		ShowTitle:       pb.ShowTitle,
		Episode:         pb.Episode,
		Season:          pb.Season,
		DurationSeconds: valueOrZero(pb.TotalTime),
	}
	entry.Resume = &ResumePoint{
		ResumeSeconds: valueOrZero(pb.ResumeTime),
		TotalSeconds:  valueOrZero(pb.TotalTime),
	}
	return entry
}

// artBundle keeps only the art slots that resolved to something.
func artBundle(pb *Playback) map[string]string {
	icon := pb.Icon
	if icon == "" {
		icon = pb.Thumbnail
	}
	art := make(map[string]string, 4)
	for slot, ref := range map[string]string{
		"thumb":  pb.Thumbnail,
		"poster": pb.Poster,
		"fanart": pb.Fanart,
		"icon":   icon,
	} {
		if ref != "" {
			art[slot] = ref
		}
	}
	if len(art) == 0 {
		return nil
	}
	return art
}

func valueOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
