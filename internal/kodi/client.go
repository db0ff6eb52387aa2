package kodi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"kodi-recall/internal/logging"
)

// ErrNoActivePlayer is returned when the host has nothing playing.
var ErrNoActivePlayer = errors.New("no active player")

// Client talks JSON-RPC to the host webserver over HTTP POST.
type Client struct {
	BaseURL  string
	username string
	password string
	http     *http.Client
	log      zerolog.Logger
}

func New(baseURL, username, password string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		http: &http.Client{
			Timeout: timeout,
		},
		log: logging.WithComponent("kodi"),
	}
}

// readJSON enforces 200 OK and JSON-decodes into dst. On failure it
// returns an error that includes status and a short body snippet.
func readJSON(resp *http.Response, dst any) error {
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d from %s: %s", resp.StatusCode, resp.Request.URL.String(), snippet(b))
	}

	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode json: %w; body: %q", err, snippet(b))
	}
	return nil
}

func snippet(b []byte) string {
	s := string(b)
	if len(s) > 240 {
		s = s[:240] + "…"
	}
	return s
}

// Call issues one JSON-RPC request and decodes the result into dst when
// dst is non-nil. Host-reported failures come back as *RPCError; decode
// failures as malformed-result errors.
func (c *Client) Call(ctx context.Context, method string, params any, dst any) error {
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: method, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/jsonrpc", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	var envelope rpcResponse
	if err := readJSON(resp, &envelope); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if envelope.Error != nil {
		envelope.Error.Method = method
		return envelope.Error
	}
	if dst == nil {
		return nil
	}
	if len(envelope.Result) == 0 {
		return fmt.Errorf("%s: empty result", method)
	}
	if err := json.Unmarshal(envelope.Result, dst); err != nil {
		return fmt.Errorf("%s: malformed result: %w", method, err)
	}
	return nil
}

// Ping checks the host answers JSON-RPC.
func (c *Client) Ping(ctx context.Context) error {
	var reply string
	if err := c.Call(ctx, "JSONRPC.Ping", nil, &reply); err != nil {
		return err
	}
	if reply != "pong" {
		return fmt.Errorf("unexpected ping reply %q", reply)
	}
	return nil
}

// InfoLabels resolves host info labels in one batch. Labels the host
// does not know come back empty, not as errors.
func (c *Client) InfoLabels(ctx context.Context, names ...string) (map[string]string, error) {
	if len(names) == 0 {
		return map[string]string{}, nil
	}
	var out map[string]string
	if err := c.Call(ctx, "XBMC.GetInfoLabels", map[string]any{"labels": names}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// InfoBooleans resolves host boolean conditions in one batch.
func (c *Client) InfoBooleans(ctx context.Context, names ...string) (map[string]bool, error) {
	if len(names) == 0 {
		return map[string]bool{}, nil
	}
	var out map[string]bool
	if err := c.Call(ctx, "XBMC.GetInfoBooleans", map[string]any{"booleans": names}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ActivePlayers lists the host's currently active players.
func (c *Client) ActivePlayers(ctx context.Context) ([]Player, error) {
	var out []Player
	if err := c.Call(ctx, "Player.GetActivePlayers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// activeVideoPlayer picks the player to query, preferring video.
func (c *Client) activeVideoPlayer(ctx context.Context) (Player, error) {
	players, err := c.ActivePlayers(ctx)
	if err != nil {
		return Player{}, err
	}
	if len(players) == 0 {
		return Player{}, ErrNoActivePlayer
	}
	for _, p := range players {
		if p.Type == "video" {
			return p, nil
		}
	}
	return players[0], nil
}

// PlayingItem returns the now-playing item of the active player.
func (c *Client) PlayingItem(ctx context.Context) (PlayerItem, error) {
	player, err := c.activeVideoPlayer(ctx)
	if err != nil {
		return PlayerItem{}, err
	}
	params := map[string]any{
		"playerid":   player.ID,
		"properties": []string{"file", "art", "resume"},
	}
	var out playerItemResult
	if err := c.Call(ctx, "Player.GetItem", params, &out); err != nil {
		return PlayerItem{}, err
	}
	return out.Item, nil
}

// PlayerTimes returns elapsed and total seconds of the active player.
func (c *Client) PlayerTimes(ctx context.Context) (elapsed, total float64, err error) {
	player, err := c.activeVideoPlayer(ctx)
	if err != nil {
		return 0, 0, err
	}
	params := map[string]any{
		"playerid":   player.ID,
		"properties": []string{"time", "totaltime", "speed"},
	}
	var out playerPropsResult
	if err := c.Call(ctx, "Player.GetProperties", params, &out); err != nil {
		return 0, 0, err
	}
	return out.Time.seconds(), out.TotalTime.seconds(), nil
}

// Seasons fetches the season listing of a library show.
func (c *Client) Seasons(ctx context.Context, tvshowID int) (SeasonsResult, error) {
	params := map[string]any{"tvshowid": tvshowID}
	var out SeasonsResult
	if err := c.Call(ctx, "VideoLibrary.GetSeasons", params, &out); err != nil {
		return SeasonsResult{}, err
	}
	return out, nil
}

// OpenPath starts playback of the given locator, resuming where a resume
// point exists.
func (c *Client) OpenPath(ctx context.Context, path string) error {
	params := map[string]any{
		"item":    map[string]string{"file": path},
		"options": map[string]bool{"resume": true},
	}
	var reply string
	return c.Call(ctx, "Player.Open", params, &reply)
}

// Notify pops a toast notification in the host GUI.
func (c *Client) Notify(ctx context.Context, title, message string) error {
	params := map[string]any{
		"title":       title,
		"message":     message,
		"displaytime": 5000,
	}
	var reply string
	return c.Call(ctx, "GUI.ShowNotification", params, &reply)
}
