package playback

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"kodi-recall/internal/logging"
)

// Item is the host's view of the now-playing entry, as reported by the
// player at playback start.
type Item struct {
	Path       string // playable locator
	Label      string
	Label2     string
	ThumbArt   string   // item-level thumb art reference
	IconArt    string   // item-level icon art reference
	ResumeSecs *float64 // item resume property, nil when unset
	TotalSecs  *float64 // item total-time property, nil when unset
}

// PlayerInfo is the slice of the host player the enricher consumes.
// Implemented by the JSON-RPC client; fakes in tests.
type PlayerInfo interface {
	// Item returns the now-playing item.
	Item(ctx context.Context) (Item, error)
	// Labels resolves host info labels in one batch. Absent labels come
	// back as empty strings, not errors.
	Labels(ctx context.Context, names ...string) (map[string]string, error)
	// Flags resolves host boolean conditions in one batch.
	Flags(ctx context.Context, names ...string) (map[string]bool, error)
	// Times returns the live player's elapsed and total seconds.
	Times(ctx context.Context) (elapsed, total float64, err error)
}

// SeasonInfo is the decoded result of a season-count lookup.
type SeasonInfo struct {
	Total   *int // reported total, nil when the service omitted it
	Seasons []SeasonEntry
}

type SeasonEntry struct {
	ID    int
	Label string
}

// SeasonLookup answers the one remote metadata question enrichment asks.
type SeasonLookup interface {
	Seasons(ctx context.Context, showID int) (SeasonInfo, error)
}

// Host info labels and booleans consumed by the enricher.
const (
	labelDBID          = "VideoPlayer.DBID"
	labelTitle         = "VideoPlayer.Title"
	labelTVShowTitle   = "VideoPlayer.TVShowTitle"
	labelTVShowDBID    = "VideoPlayer.TvShowDBID"
	labelYear          = "VideoPlayer.Year"
	labelSeason        = "VideoPlayer.Season"
	labelEpisode       = "VideoPlayer.Episode"
	labelChannelName   = "VideoPlayer.ChannelName"
	labelChannelNumber = "VideoPlayer.ChannelNumberLabel"
	labelChannelGroup  = "VideoPlayer.ChannelGroup"

	labelArtTVShowPoster = "Player.Art(tvshow.poster)"
	labelArtPoster       = "Player.Art(poster)"
	labelArtFanart       = "Player.Art(fanart)"
	labelArtThumb        = "Player.Art(thumb)"
	labelArtIcon         = "Player.Art(icon)"

	labelListItemPath = "ListItem.Path"
	labelAddonID      = "ListItem.Property(Addon.ID)"
	labelFolderPath   = "Container.FolderPath"

	flagLiveTV    = "PVR.IsPlayingTv"
	flagLiveRadio = "PVR.IsPlayingRadio"
)

var enrichLabels = []string{
	labelDBID, labelTitle, labelTVShowTitle, labelTVShowDBID,
	labelYear, labelSeason, labelEpisode,
	labelChannelName, labelChannelNumber, labelChannelGroup,
	labelArtTVShowPoster, labelArtPoster, labelArtFanart, labelArtThumb, labelArtIcon,
	labelListItemPath, labelAddonID, labelFolderPath,
}

// Enricher fills a seeded record from live host signals plus one seasons
// lookup. Dependencies are injected so the steps run against fakes in
// tests without a running host.
type Enricher struct {
	info    PlayerInfo
	seasons SeasonLookup
	log     zerolog.Logger
}

func NewEnricher(info PlayerInfo, seasons SeasonLookup) *Enricher {
	return &Enricher{
		info:    info,
		seasons: seasons,
		log:     logging.WithComponent("enrich"),
	}
}

// Enrich mutates pb in place. Individual missing or malformed signals
// degrade to nil fields; the only error returned is a failure to take the
// snapshot itself (host unreachable), in which case pb keeps its seeded
// values.
func (e *Enricher) Enrich(ctx context.Context, pb *Playback) error {
	item, err := e.info.Item(ctx)
	if err != nil {
		return fmt.Errorf("player item: %w", err)
	}
	if item.Path != "" {
		pb.Path = item.Path
	}
	if item.Label != "" {
		pb.Label = item.Label
	}
	if item.Label2 != "" {
		pb.Label2 = item.Label2
	}

	labels, err := e.info.Labels(ctx, enrichLabels...)
	if err != nil {
		return fmt.Errorf("info labels: %w", err)
	}
	flags, err := e.info.Flags(ctx, flagLiveTV, flagLiveRadio)
	if err != nil {
		return fmt.Errorf("info booleans: %w", err)
	}

	dbid := parseIDField(e.log, "dbid", labels[labelDBID])

	if pb.Source == "" {
		sig := Signals{
			DBID:          dbid,
			LiveTV:        flags[flagLiveTV],
			LiveRadio:     flags[flagLiveRadio],
			Path:          pb.Path,
			ListItemPath:  labels[labelListItemPath],
			AddonID:       labels[labelAddonID],
			ContainerPath: labels[labelFolderPath],
		}
		pb.Source = Classify(sig)
		if pb.Source == SourceAddon {
			if name, ok := MatchedAddonRule(sig); ok {
				e.log.Debug().Str("rule", name).Str("path", pb.Path).Msg("addon heuristic matched")
			}
		}
	}

	// Live broadcasts have no resume position.
	if pb.Source != SourcePVRLive {
		e.fillTimes(ctx, pb, item)
	}

	pb.DBID = dbid

	if pb.Source == SourcePVRLive {
		pb.Title = labels[labelChannelName]
	} else {
		pb.Title = labels[labelTitle]
	}

	switch {
	case labels[labelTVShowTitle] != "":
		pb.Type = MediaEpisode
		pb.TVShowDBID = parseIDField(e.log, "tvshowdbid", labels[labelTVShowDBID])
	case pb.DBID != nil:
		pb.Type = MediaMovie
	default:
		pb.Type = MediaVideo
	}

	pb.Poster = NormalizeArtURL(firstNonEmpty(labels[labelArtTVShowPoster], labels[labelArtPoster], labels[labelArtThumb]))
	pb.Fanart = NormalizeArtURL(labels[labelArtFanart])
	pb.Thumbnail = NormalizeArtURL(firstNonEmpty(labels[labelArtThumb], item.ThumbArt))
	pb.Icon = NormalizeArtURL(firstNonEmpty(labels[labelArtIcon], item.IconArt))
	if pb.Icon == "" {
		pb.Icon = pb.Thumbnail
	}

	// Harmless no-ops for non-PVR sources.
	pb.ChannelName = labels[labelChannelName]
	pb.ChannelNumberLabel = labels[labelChannelNumber]
	pb.ChannelGroup = labels[labelChannelGroup]

	pb.Year = parseIntField(e.log, "year", labels[labelYear])
	pb.Season = parseIntField(e.log, "season", labels[labelSeason])
	pb.Episode = parseIntField(e.log, "episode", labels[labelEpisode])

	if pb.TVShowDBID != nil {
		e.fillTotalSeasons(ctx, pb)
	}
	return nil
}

// fillTimes prefers the live player's clock and falls back to the item's
// resume/total properties. Zero values count as absent.
func (e *Enricher) fillTimes(ctx context.Context, pb *Playback, item Item) {
	elapsed, total, err := e.info.Times(ctx)
	if err != nil {
		e.log.Debug().Err(err).Msg("player times unavailable, using item properties")
	} else {
		if total > 0 {
			pb.TotalTime = &total
			pb.Duration = &total
		}
		if elapsed > 0 {
			pb.ResumeTime = &elapsed
		}
	}
	if pb.TotalTime == nil && item.TotalSecs != nil && *item.TotalSecs > 0 {
		pb.TotalTime = item.TotalSecs
		pb.Duration = item.TotalSecs
	}
	if pb.ResumeTime == nil && item.ResumeSecs != nil && *item.ResumeSecs > 0 {
		pb.ResumeTime = item.ResumeSecs
	}
}

// fillTotalSeasons issues the single remote lookup of enrichment. Any
// failure leaves totalseasons nil; playback tracking is unaffected.
func (e *Enricher) fillTotalSeasons(ctx context.Context, pb *Playback) {
	info, err := e.seasons.Seasons(ctx, *pb.TVShowDBID)
	if err != nil {
		e.log.Error().Err(err).Int("tvshowdbid", *pb.TVShowDBID).Msg("seasons lookup failed")
		return
	}
	if info.Total != nil {
		pb.TotalSeasons = info.Total
		return
	}
	n := len(info.Seasons)
	pb.TotalSeasons = &n
}

// parseIntField coerces a host numeric signal. Absent or non-numeric
// input is an expected case, never an error.
func parseIntField(log zerolog.Logger, field, raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Debug().Str("field", field).Str("value", raw).Msg("non-numeric signal, leaving unset")
		return nil
	}
	return &n
}

// parseIDField is parseIntField for database identifiers, where zero and
// negative values mean "not in the library" and are stored as nil.
func parseIDField(log zerolog.Logger, field, raw string) *int {
	n := parseIntField(log, field, raw)
	if n == nil || *n <= 0 {
		return nil
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
