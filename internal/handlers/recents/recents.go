package recents

import (
	"github.com/gofiber/fiber/v3"

	"kodi-recall/internal/playback"
	"kodi-recall/internal/store"
)

// List returns the raw records, most recent first.
func List(list *store.PlaybackList) fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.JSON(list.List())
	}
}

// Entries returns display entries ready for a UI list.
func Entries(list *store.PlaybackList) fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.JSON(displayEntries(list))
	}
}

// Find returns the record with the given path, or 404.
func Find(list *store.PlaybackList) fiber.Handler {
	return func(c fiber.Ctx) error {
		path := c.Query("path", "")
		if path == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing path parameter"})
		}
		pb := list.FindByPath(path)
		if pb == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no record for path"})
		}
		return c.JSON(pb)
	}
}

// Delete removes every record with the given path and persists the list.
func Delete(list *store.PlaybackList, changed func()) fiber.Handler {
	return func(c fiber.Ctx) error {
		path := c.Query("path", "")
		if path == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing path parameter"})
		}
		removed := list.RemoveByPath(path)
		if removed == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no record for path"})
		}
		if err := list.Save(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if changed != nil {
			changed()
		}
		return c.JSON(fiber.Map{"removed": removed})
	}
}

func displayEntries(list *store.PlaybackList) []playback.DisplayEntry {
	records := list.List()
	entries := make([]playback.DisplayEntry, 0, len(records))
	for _, pb := range records {
		entries = append(entries, playback.BuildDisplayEntry(pb))
	}
	return entries
}
