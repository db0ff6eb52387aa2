package kodi

import (
	"context"

	"github.com/rs/zerolog"

	"kodi-recall/internal/logging"
	"kodi-recall/internal/playback"
)

// Provider adapts the JSON-RPC client to the playback ports.
type Provider struct {
	client *Client
	log    zerolog.Logger
}

var (
	_ playback.PlayerInfo   = (*Provider)(nil)
	_ playback.SeasonLookup = (*Provider)(nil)
)

func NewProvider(client *Client) *Provider {
	return &Provider{
		client: client,
		log:    logging.WithComponent("kodi"),
	}
}

// Item returns the now-playing item. The secondary label is a
// best-effort list-item lookup and degrades to empty.
func (p *Provider) Item(ctx context.Context) (playback.Item, error) {
	raw, err := p.client.PlayingItem(ctx)
	if err != nil {
		return playback.Item{}, err
	}

	item := playback.Item{
		Path:     raw.File,
		Label:    raw.Label,
		ThumbArt: raw.Art["thumb"],
		IconArt:  raw.Art["icon"],
	}
	if raw.Resume != nil {
		if raw.Resume.Position > 0 {
			pos := raw.Resume.Position
			item.ResumeSecs = &pos
		}
		if raw.Resume.Total > 0 {
			tot := raw.Resume.Total
			item.TotalSecs = &tot
		}
	}

	labels, err := p.client.InfoLabels(ctx, "ListItem.Label2")
	if err != nil {
		p.log.Debug().Err(err).Msg("label2 lookup failed")
	} else {
		item.Label2 = labels["ListItem.Label2"]
	}
	return item, nil
}

func (p *Provider) Labels(ctx context.Context, names ...string) (map[string]string, error) {
	return p.client.InfoLabels(ctx, names...)
}

func (p *Provider) Flags(ctx context.Context, names ...string) (map[string]bool, error) {
	return p.client.InfoBooleans(ctx, names...)
}

func (p *Provider) Times(ctx context.Context) (elapsed, total float64, err error) {
	return p.client.PlayerTimes(ctx)
}

// OpenPath asks the host to start playing the given locator.
func (p *Provider) OpenPath(ctx context.Context, path string) error {
	return p.client.OpenPath(ctx, path)
}

// Notify pops a toast in the host GUI.
func (p *Provider) Notify(ctx context.Context, title, message string) error {
	return p.client.Notify(ctx, title, message)
}

// Paused reports whether the host player is paused.
func (p *Provider) Paused(ctx context.Context) (bool, error) {
	flags, err := p.client.InfoBooleans(ctx, "Player.Paused")
	if err != nil {
		return false, err
	}
	return flags["Player.Paused"], nil
}

// Seasons answers the enricher's season-count lookup.
func (p *Provider) Seasons(ctx context.Context, showID int) (playback.SeasonInfo, error) {
	res, err := p.client.Seasons(ctx, showID)
	if err != nil {
		return playback.SeasonInfo{}, err
	}

	info := playback.SeasonInfo{Total: res.Limits.Total}
	for _, s := range res.Seasons {
		info.Seasons = append(info.Seasons, playback.SeasonEntry{ID: s.SeasonID, Label: s.Label})
	}
	return info, nil
}
