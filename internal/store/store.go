package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"kodi-recall/internal/logging"
	"kodi-recall/internal/playback"
)

// pathLocks serializes every operation per backing-file path, shared by
// all PlaybackList instances bound to that path. The invariant "the file
// always contains a complete, valid JSON array" depends on no
// interleaved writes.
var pathLocks sync.Map // map[string]*sync.Mutex

func lockFor(path string) *sync.Mutex {
	actual, _ := pathLocks.LoadOrStore(path, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// PlaybackList is an ordered sequence of playback records mirrored to
// exactly one JSON file, most recent first. The in-memory sequence is
// owned exclusively by the list; the backing file is the sole durable
// copy.
type PlaybackList struct {
	file string
	mu   *sync.Mutex
	list []*playback.Playback
	log  zerolog.Logger
}

func New(file string) *PlaybackList {
	file = filepath.Clean(file)
	return &PlaybackList{
		file: file,
		mu:   lockFor(file),
		list: []*playback.Playback{},
		log:  logging.WithComponent("store").With().Str("file", file).Logger(),
	}
}

// File returns the backing file path.
func (s *PlaybackList) File() string {
	return s.file
}

// Init resets the in-memory sequence to empty and (re)creates the
// backing file containing an empty JSON array, creating parent
// directories if absent.
func (s *PlaybackList) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initLocked()
}

func (s *PlaybackList) initLocked() error {
	s.list = []*playback.Playback{}
	if err := s.saveLocked(); err != nil {
		return err
	}
	s.log.Debug().Msg("store initialised empty")
	return nil
}

// LoadOrInit clears in-memory state and reads the backing file. A
// missing file, invalid JSON or a top-level non-array self-heal via
// Init with a warning; any other I/O failure propagates to the caller.
// Loading twice in a row yields the same sequence both times.
func (s *PlaybackList) LoadOrInit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.list = []*playback.Playback{}
	raw, err := os.ReadFile(s.file)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Debug().Msg("no store file yet, initialising")
		return s.initLocked()
	}
	if err != nil {
		return fmt.Errorf("read store file: %w", err)
	}

	records, err := decodeRecords(raw, s.log)
	if err != nil {
		s.log.Warn().Err(err).Msg("store file unreadable, reinitialising")
		return s.initLocked()
	}
	s.list = records
	s.log.Info().Int("entries", len(records)).Msg("store loaded")
	return nil
}

// Save serializes the full sequence and replaces the backing file
// atomically: content goes to a temp file in the same directory, is
// fsynced, then renamed over the old file. A crash mid-write leaves the
// previous version intact.
func (s *PlaybackList) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *PlaybackList) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.file), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	list := s.list
	if list == nil {
		list = []*playback.Playback{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	data = append(data, '\n')

	pending, err := renameio.NewPendingFile(s.file)
	if err != nil {
		return fmt.Errorf("create pending store file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			s.log.Debug().Err(err).Msg("cleanup pending store file")
		}
	}()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write store data: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace store file: %w", err)
	}
	return nil
}

// DeleteFile removes the backing file if it exists. In-memory state is
// not implicitly cleared.
func (s *PlaybackList) DeleteFile() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.file)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete store file: %w", err)
	}
	return nil
}

// PushFront inserts a record at the head, most recent first.
func (s *PlaybackList) PushFront(pb *playback.Playback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = append([]*playback.Playback{pb}, s.list...)
}

// TrimTo drops records beyond the first n. Negative n keeps everything.
func (s *PlaybackList) TrimTo(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n >= 0 && len(s.list) > n {
		s.list = s.list[:n]
	}
}

// RemoveByPath removes every record whose path equals the argument,
// preserving the order of the rest. It reports how many were removed.
// In-memory only; callers persist via Save.
func (s *PlaybackList) RemoveByPath(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]*playback.Playback, 0, len(s.list))
	removed := 0
	for _, pb := range s.list {
		if pb.Path == path {
			removed++
			continue
		}
		kept = append(kept, pb)
	}
	s.list = kept
	return removed
}

// FindByPath returns a copy of the first record with a matching path, or
// nil when no record matches.
func (s *PlaybackList) FindByPath(path string) *playback.Playback {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, pb := range s.list {
		if pb.Path == path {
			return pb.Copy()
		}
	}
	return nil
}

// UpdateByPath applies a partial update to the first matching record,
// reporting whether one matched.
func (s *PlaybackList) UpdateByPath(path string, u playback.Update) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, pb := range s.list {
		if pb.Path == path {
			pb.Apply(u)
			return true
		}
	}
	return false
}

// List returns an isolated snapshot of the sequence.
func (s *PlaybackList) List() []*playback.Playback {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*playback.Playback, len(s.list))
	for i, pb := range s.list {
		out[i] = pb.Copy()
	}
	return out
}

// Len returns the number of records.
func (s *PlaybackList) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list)
}

// knownKeys is derived from the record's struct tags so the decode
// boundary stays in step with the type.
var knownKeys = structJSONKeys(playback.Playback{})

func structJSONKeys(v any) map[string]struct{} {
	keys := make(map[string]struct{})
	t := reflect.TypeOf(v)
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		if comma := strings.Index(tag, ","); comma >= 0 {
			tag = tag[:comma]
		}
		keys[tag] = struct{}{}
	}
	return keys
}

// decodeRecords parses the backing file content. Unknown keys inside
// records are tolerated and logged; a non-array top level or invalid
// JSON is an error the caller heals by reinitialising.
func decodeRecords(raw []byte, log zerolog.Logger) ([]*playback.Playback, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("top-level JSON is %s, want array", typeErr.Value)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	records := make([]*playback.Playback, 0, len(items))
	for i, item := range items {
		var pb playback.Playback
		if err := json.Unmarshal(item, &pb); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		logUnknownKeys(item, i, log)
		records = append(records, &pb)
	}
	return records, nil
}

func logUnknownKeys(item json.RawMessage, index int, log zerolog.Logger) {
	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(item, &asMap); err != nil {
		return
	}
	for key := range asMap {
		if _, ok := knownKeys[key]; !ok {
			log.Warn().Str("key", key).Int("record", index).Msg("unknown key in store file, ignored")
		}
	}
}
