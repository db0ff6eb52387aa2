package admin

import (
	"github.com/gofiber/fiber/v3"

	"kodi-recall/internal/store"
	"kodi-recall/internal/version"
)

// Reset wipes the backing file and reinitializes an empty list.
//
// POST /admin/reset
func Reset(list *store.PlaybackList, changed func()) fiber.Handler {
	return func(c fiber.Ctx) error {
		if err := list.DeleteFile(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if err := list.Init(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if changed != nil {
			changed()
		}
		return c.JSON(fiber.Map{"ok": true, "entries": list.Len()})
	}
}

// Reload rereads the backing file, healing it when unreadable. Useful
// after editing the file by hand.
//
// POST /admin/reload
func Reload(list *store.PlaybackList, changed func()) fiber.Handler {
	return func(c fiber.Ctx) error {
		if err := list.LoadOrInit(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if changed != nil {
			changed()
		}
		return c.JSON(fiber.Map{"ok": true, "entries": list.Len()})
	}
}

// Version reports build information.
//
// GET /admin/version
func Version() fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.JSON(version.Current())
	}
}
