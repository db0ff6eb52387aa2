package kodi

import (
	"encoding/json"
	"fmt"
)

// rpcRequest is the JSON-RPC 2.0 call envelope. The method doubles as the
// request id; the daemon never pipelines calls on one connection.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// RPCError is the error object the host returns for a failed call.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Method  string `json:"-"`
}

func (e *RPCError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("%s: rpc error %d: %s", e.Method, e.Code, e.Message)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Player is one active host player.
type Player struct {
	ID   int    `json:"playerid"`
	Type string `json:"type"`
}

// PlayerItem is the now-playing item as Player.GetItem reports it.
type PlayerItem struct {
	ID     *int              `json:"id"`
	Type   string            `json:"type"`
	Label  string            `json:"label"`
	File   string            `json:"file"`
	Art    map[string]string `json:"art"`
	Resume *ItemResume       `json:"resume"`
}

// ItemResume is the host-side resume point of an item, in seconds.
type ItemResume struct {
	Position float64 `json:"position"`
	Total    float64 `json:"total"`
}

type playerItemResult struct {
	Item PlayerItem `json:"item"`
}

// clockTime is the host's hours/minutes/seconds/milliseconds time shape.
type clockTime struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	Seconds      int `json:"seconds"`
	Milliseconds int `json:"milliseconds"`
}

func (t clockTime) seconds() float64 {
	return float64(t.Hours)*3600 + float64(t.Minutes)*60 + float64(t.Seconds) + float64(t.Milliseconds)/1000
}

type playerPropsResult struct {
	Time      clockTime `json:"time"`
	TotalTime clockTime `json:"totaltime"`
	Speed     float64   `json:"speed"`
}

// SeasonsResult is the VideoLibrary.GetSeasons payload. The limit total
// is a pointer so an omitted count can be told apart from zero.
type SeasonsResult struct {
	Limits  ListLimits  `json:"limits"`
	Seasons []SeasonRow `json:"seasons"`
}

// ListLimits is the paging block library list results carry.
type ListLimits struct {
	Start *int `json:"start"`
	End   *int `json:"end"`
	Total *int `json:"total"`
}

// SeasonRow is one season of a library show.
type SeasonRow struct {
	Label    string `json:"label"`
	SeasonID int    `json:"seasonid"`
}

// Notification is one host event delivered over the notification socket.
type Notification struct {
	Method string
	Sender string
	Data   json.RawMessage
}

// Player notification methods the daemon reacts to.
const (
	NotifyOnPlay    = "Player.OnPlay"
	NotifyOnAVStart = "Player.OnAVStart"
	NotifyOnPause   = "Player.OnPause"
	NotifyOnResume  = "Player.OnResume"
	NotifyOnSeek    = "Player.OnSeek"
	NotifyOnStop    = "Player.OnStop"
)

// StopData is the payload of Player.OnStop. End reports whether playback
// ran to its natural end rather than being stopped by the user.
type StopData struct {
	End  bool            `json:"end"`
	Item json.RawMessage `json:"item"`
}
