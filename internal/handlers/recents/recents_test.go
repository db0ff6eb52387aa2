package recents

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kodi-recall/internal/playback"
	"kodi-recall/internal/store"
)

func seededList(t *testing.T, paths ...string) *store.PlaybackList {
	t.Helper()
	list := store.New(filepath.Join(t.TempDir(), "playback_list.json"))
	require.NoError(t, list.Init())
	for _, p := range paths {
		pb := playback.New(p, "Label for "+p, "")
		pb.Source = playback.SourceFile
		pb.Title = p
		list.PushFront(pb)
	}
	require.NoError(t, list.Save())
	return list
}

func doJSON(t *testing.T, app *fiber.App, method, target string, out any) int {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestListReturnsRecordsNewestFirst(t *testing.T) {
	list := seededList(t, "/m/a.mkv", "/m/b.mkv")
	app := fiber.New()
	app.Get("/api/recents", List(list))

	var got []*playback.Playback
	code := doJSON(t, app, http.MethodGet, "/api/recents", &got)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, got, 2)
	assert.Equal(t, "/m/b.mkv", got[0].Path)
	assert.Equal(t, "/m/a.mkv", got[1].Path)
}

func TestListEmptyIsArray(t *testing.T) {
	list := seededList(t)
	app := fiber.New()
	app.Get("/api/recents", List(list))

	req := httptest.NewRequest(http.MethodGet, "/api/recents", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(body))
}

func TestEntriesCarryTargetsAndLabels(t *testing.T) {
	list := seededList(t, "/m/a.mkv")
	app := fiber.New()
	app.Get("/api/recents/entries", Entries(list))

	var got []playback.DisplayEntry
	code := doJSON(t, app, http.MethodGet, "/api/recents/entries", &got)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, got, 1)
	assert.Equal(t, "/m/a.mkv", got[0].Target)
	assert.True(t, got[0].Playable)
	assert.NotEmpty(t, got[0].Label)
}

func TestFind(t *testing.T) {
	list := seededList(t, "/m/a.mkv")
	app := fiber.New()
	app.Get("/api/recents/find", Find(list))

	var got playback.Playback
	code := doJSON(t, app, http.MethodGet, "/api/recents/find?path=/m/a.mkv", &got)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "/m/a.mkv", got.Path)

	code = doJSON(t, app, http.MethodGet, "/api/recents/find?path=/m/missing.mkv", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code = doJSON(t, app, http.MethodGet, "/api/recents/find", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDeleteRemovesAndPersists(t *testing.T) {
	list := seededList(t, "/m/a.mkv", "/m/b.mkv")
	app := fiber.New()
	changed := 0
	app.Delete("/api/recents/entry", Delete(list, func() { changed++ }))

	code := doJSON(t, app, http.MethodDelete, "/api/recents/entry?path=/m/a.mkv", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, changed)
	assert.Nil(t, list.FindByPath("/m/a.mkv"))

	raw, err := os.ReadFile(list.File())
	require.NoError(t, err)
	var onDisk []playback.Playback
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	require.Len(t, onDisk, 1)
	assert.Equal(t, "/m/b.mkv", onDisk[0].Path)

	code = doJSON(t, app, http.MethodDelete, "/api/recents/entry?path=/m/a.mkv", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, 1, changed, "failed delete must not fire the change hook")
}
