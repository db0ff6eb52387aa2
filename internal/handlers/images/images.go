package images

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"kodi-recall/internal/config"
)

// Opts configure the art proxy.
type Opts struct {
	KodiBase string // http://host:port
	Username string
	Password string
	Client   *http.Client
}

func NewOpts(cfg config.Config) Opts {
	return Opts{
		KodiBase: cfg.KodiHTTPBase(),
		Username: cfg.KodiUsername,
		Password: cfg.KodiPassword,
		Client:   &http.Client{Timeout: 20 * time.Second},
	}
}

// Art proxies one normalized art reference. Plain http(s) references are
// fetched directly; everything else (local paths, special://, smb://)
// goes through the host's image endpoint, which can render them.
//
// GET /img?u=<reference>
func Art(opts Opts) fiber.Handler {
	return func(c fiber.Ctx) error {
		ref := c.Query("u", "")
		if ref == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing u parameter"})
		}

		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
			return proxy(c, opts, ref, false)
		}
		wrapped := "image://" + escapeRef(ref) + "/"
		hosted := opts.KodiBase + "/image/" + escapeRef(wrapped)
		return proxy(c, opts, hosted, true)
	}
}

// escapeRef percent-encodes an art reference the way the host expects
// inside image:// URLs: every reserved byte escaped and spaces as %20,
// not the + form query escaping produces.
func escapeRef(ref string) string {
	return strings.ReplaceAll(url.QueryEscape(ref), "+", "%20")
}

func proxy(c fiber.Ctx, opts Opts, fullURL string, withAuth bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if withAuth && opts.Username != "" {
		req.SetBasicAuth(opts.Username, opts.Password)
	}

	resp, err := opts.Client.Do(req)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	defer resp.Body.Close()

	c.Status(resp.StatusCode)
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		c.Set("Content-Type", ct)
	} else {
		c.Set("Content-Type", "image/jpeg")
	}
	c.Set("Cache-Control", "public, max-age=3600, s-maxage=3600")

	_, copyErr := io.Copy(c, resp.Body)
	return copyErr
}
