package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"kodi-recall/internal/kodi"
	"kodi-recall/internal/logging"
	"kodi-recall/internal/playback"
	"kodi-recall/internal/store"
)

// ErrNothingToResume is returned by Switchback when the list holds no
// entry besides what is already playing.
var ErrNothingToResume = errors.New("nothing to switch back to")

// Host is the slice of the media host the tracker drives directly.
type Host interface {
	Times(ctx context.Context) (elapsed, total float64, err error)
	OpenPath(ctx context.Context, path string) error
	Notify(ctx context.Context, title, message string) error
}

// Options tune a Tracker.
type Options struct {
	MaxEntries int           // recents list cap
	Timeout    time.Duration // bound for host calls per event
	NotifyHost bool          // pop a toast on switchback
}

// Tracker turns host player notifications into durable recents-list
// state. Set OnChange before the listener starts; it runs after every
// list mutation.
type Tracker struct {
	OnChange func()

	enricher *playback.Enricher
	host     Host
	list     *store.PlaybackList
	opts     Options
	log      zerolog.Logger

	mu      sync.Mutex
	current *playback.Playback
	session string
}

func New(enricher *playback.Enricher, host Host, list *store.PlaybackList, opts Options) *Tracker {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Tracker{
		enricher: enricher,
		host:     host,
		list:     list,
		opts:     opts,
		log:      logging.WithComponent("tracker"),
	}
}

// HandleNotification dispatches one host notification. It is wired as
// the listener's Handler and runs on the socket's read goroutine.
func (t *Tracker) HandleNotification(n kodi.Notification) {
	switch n.Method {
	case kodi.NotifyOnPlay, kodi.NotifyOnAVStart:
		t.onPlay()
	case kodi.NotifyOnPause, kodi.NotifyOnSeek:
		t.onProgress(true)
	case kodi.NotifyOnResume:
		t.onProgress(false)
	case kodi.NotifyOnStop:
		var data kodi.StopData
		if len(n.Data) > 0 {
			if err := json.Unmarshal(n.Data, &data); err != nil {
				t.log.Debug().Err(err).Msg("unparseable stop payload")
			}
		}
		t.onStop(data.End)
	}
}

// Tick is the periodic progress refresh while something plays. It keeps
// memory and watchers fresh without touching the disk; pause, seek and
// stop persist.
func (t *Tracker) Tick() {
	t.onProgress(false)
}

// Current returns a copy of the in-flight record, or nil when idle.
func (t *Tracker) Current() *playback.Playback {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return nil
	}
	return t.current.Copy()
}

// Switchback relaunches the previous entry: the second list entry while
// the first is what is currently playing, otherwise the first. It
// returns the record being launched.
func (t *Tracker) Switchback(ctx context.Context) (*playback.Playback, error) {
	entries := t.list.List()

	t.mu.Lock()
	cur := t.current
	t.mu.Unlock()

	var target *playback.Playback
	switch {
	case len(entries) == 0:
		return nil, ErrNothingToResume
	case cur != nil && entries[0].Path == cur.Path:
		if len(entries) < 2 {
			return nil, ErrNothingToResume
		}
		target = entries[1]
	default:
		target = entries[0]
	}

	dest := target.LaunchTarget()
	if err := t.host.OpenPath(ctx, dest); err != nil {
		return nil, fmt.Errorf("open %s: %w", dest, err)
	}
	t.log.Info().Str("target", dest).Str("label", target.DisplayLabel()).Msg("switchback")

	if t.opts.NotifyHost {
		if err := t.host.Notify(ctx, "Switchback", target.ShortLabel()); err != nil {
			t.log.Debug().Err(err).Msg("toast failed")
		}
	}
	return target, nil
}

// onPlay enriches a fresh record for the now-playing item and upserts it
// at the head of the list. Kodi fires OnPlay and OnAVStart for the same
// session; the second pass simply re-enriches with better signals.
func (t *Tracker) onPlay() {
	ctx, cancel := t.bound()
	defer cancel()

	pb := playback.New("", "", "")
	if err := t.enricher.Enrich(ctx, pb); err != nil {
		t.log.Error().Err(err).Msg("enrichment failed, session not tracked")
		return
	}
	if pb.Path == "" {
		t.log.Warn().Msg("playing item has no locator, skipped")
		return
	}

	session := uuid.NewString()
	t.mu.Lock()
	t.current = pb
	t.session = session
	t.mu.Unlock()

	t.list.RemoveByPath(pb.Path)
	t.list.PushFront(pb.Copy())
	t.list.TrimTo(t.opts.MaxEntries)
	if err := t.list.Save(); err != nil {
		t.log.Error().Err(err).Msg("save failed")
	}

	t.log.Info().
		Str("session", session).
		Str("path", pb.Path).
		Str("source", string(pb.Source)).
		Str("label", pb.DisplayLabel()).
		Msg("tracking playback")
	t.changed()
}

// onProgress refreshes the current record's position from the player
// clock. Live broadcasts carry no resume point and are left alone.
func (t *Tracker) onProgress(persist bool) {
	t.mu.Lock()
	cur := t.current
	t.mu.Unlock()
	if cur == nil || cur.Source == playback.SourcePVRLive {
		return
	}

	ctx, cancel := t.bound()
	defer cancel()
	elapsed, total, err := t.host.Times(ctx)
	if err != nil {
		t.log.Debug().Err(err).Msg("player times unavailable")
		return
	}

	var u playback.Update
	if elapsed > 0 {
		u.ResumeTime = &elapsed
	}
	if total > 0 {
		u.TotalTime = &total
	}
	if u.ResumeTime == nil && u.TotalTime == nil {
		return
	}

	// Re-check and write through under one lock. A stop or a new play
	// that landed while the clock read was in flight has already
	// replaced the session; its outcome must not be overwritten with
	// this stale sample.
	t.mu.Lock()
	if t.current != cur {
		t.mu.Unlock()
		return
	}
	cur.Apply(u)
	listed := t.list.UpdateByPath(cur.Path, u)
	t.mu.Unlock()

	if !listed {
		t.log.Debug().Str("path", cur.Path).Msg("record no longer listed")
	}
	if persist {
		if err := t.list.Save(); err != nil {
			t.log.Error().Err(err).Msg("save failed")
		}
	}
	t.changed()
}

// onStop finalizes the session. A natural end zeroes the resume point so
// the entry relaunches from the start.
func (t *Tracker) onStop(ended bool) {
	t.mu.Lock()
	cur := t.current
	session := t.session
	t.current = nil
	t.session = ""
	t.mu.Unlock()
	if cur == nil {
		return
	}

	if ended && cur.Source != playback.SourcePVRLive {
		zero := 0.0
		t.list.UpdateByPath(cur.Path, playback.Update{ResumeTime: &zero})
	}
	if err := t.list.Save(); err != nil {
		t.log.Error().Err(err).Msg("save failed")
	}

	t.log.Info().
		Str("session", session).
		Str("path", cur.Path).
		Bool("ended", ended).
		Msg("playback stopped")
	t.changed()
}

func (t *Tracker) changed() {
	if t.OnChange != nil {
		t.OnChange()
	}
}

func (t *Tracker) bound() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), t.opts.Timeout)
}
