package now

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"kodi-recall/internal/playback"
	"kodi-recall/internal/tracker"
)

// PauseReporter answers whether the host player is paused right now.
type PauseReporter interface {
	Paused(ctx context.Context) (bool, error)
}

// Snapshot is the /api/now payload.
type Snapshot struct {
	Playing bool               `json:"playing"`
	Paused  bool               `json:"paused"`
	Record  *playback.Playback `json:"record,omitempty"`
}

// Now reports the in-flight record plus the live paused flag. A failed
// paused lookup degrades to false rather than failing the request.
func Now(trk *tracker.Tracker, pauses PauseReporter, timeout time.Duration) fiber.Handler {
	return func(c fiber.Ctx) error {
		snap := Snapshot{Record: trk.Current()}
		snap.Playing = snap.Record != nil
		if snap.Playing && pauses != nil {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if paused, err := pauses.Paused(ctx); err == nil {
				snap.Paused = paused
			}
		}
		return c.JSON(snap)
	}
}

// Switchback relaunches the previous list entry on the host.
func Switchback(trk *tracker.Tracker, timeout time.Duration) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		target, err := trk.Switchback(ctx)
		if err != nil {
			if errors.Is(err, tracker.ErrNothingToResume) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"launched": playback.BuildDisplayEntry(target)})
	}
}
