package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDisplayEntryMovie(t *testing.T) {
	pb := &Playback{
		Path:       "/movies/Heat.mkv",
		File:       "/movies/Heat.mkv",
		Source:     SourceKodiLibrary,
		Type:       MediaMovie,
		DBID:       intp(55),
		Title:      "Heat",
		Year:       intp(1995),
		Poster:     "http://x/poster.jpg",
		Thumbnail:  "http://x/thumb.jpg",
		ResumeTime: floatp(120),
		TotalTime:  floatp(10200),
	}

	entry := BuildDisplayEntry(pb)

	assert.Equal(t, "/movies/Heat.mkv", entry.Target)
	assert.Equal(t, "Heat", entry.Label)
	assert.True(t, entry.Playable)
	require.NotNil(t, entry.Video)
	assert.Equal(t, "movie", entry.Video.MediaType)
	require.NotNil(t, entry.Video.DBID)
	assert.Equal(t, 55, *entry.Video.DBID)
	assert.Equal(t, 10200.0, entry.Video.DurationSeconds)
	require.NotNil(t, entry.Resume)
	assert.Equal(t, 120.0, entry.Resume.ResumeSeconds)
	assert.Equal(t, 10200.0, entry.Resume.TotalSeconds)
}

// Episodes resolve through the owning show in the host library, so the
// display entry carries the show id, not the episode id.
func TestBuildDisplayEntryEpisodeUsesShowID(t *testing.T) {
	pb := &Playback{
		Path:       "/tv/foo/s02e03.mkv",
		File:       "/tv/foo/s02e03.mkv",
		Source:     SourceKodiLibrary,
		Type:       MediaEpisode,
		DBID:       intp(101),
		TVShowDBID: intp(7),
		Title:      "Bar",
		ShowTitle:  "Foo",
		Season:     intp(2),
		Episode:    intp(3),
	}

	entry := BuildDisplayEntry(pb)

	require.NotNil(t, entry.Video)
	require.NotNil(t, entry.Video.DBID)
	assert.Equal(t, 7, *entry.Video.DBID)
	assert.Equal(t, "Foo (2x03) - Bar", entry.Label)
	assert.Equal(t, "Foo (2x03)", entry.ShortLabel)
}

func TestBuildDisplayEntryLiveTV(t *testing.T) {
	pb := &Playback{
		Path:        "pvr://channels/tv/all/5.pvr",
		File:        "pvr://channels/tv/all/5.pvr",
		Source:      SourcePVRLive,
		Type:        MediaVideo,
		ChannelName: "HBO",
		Thumbnail:   "http://x/logo.png",
	}

	entry := BuildDisplayEntry(pb)

	assert.Equal(t, "pvr://channels/tv/all/5.pvr", entry.Target)
	assert.Nil(t, entry.Video, "live channels are not videos")
	assert.Nil(t, entry.Resume)
	assert.Equal(t, "HBO (PVR Live)", entry.Label)
}

func TestBuildDisplayEntryRecordingKeepsVideoBlock(t *testing.T) {
	pb := &Playback{
		Path:        "pvr://recordings/tv/active/Foo.pvr",
		File:        "/recordings/Foo.ts",
		Source:      SourcePVRRecording,
		Type:        MediaVideo,
		Title:       "Foo",
		ChannelName: "HBO",
		ResumeTime:  floatp(55),
		TotalTime:   floatp(1800),
	}

	entry := BuildDisplayEntry(pb)

	assert.Equal(t, "pvr://recordings/tv/active/Foo.pvr", entry.Target, "recordings relaunch via path")
	require.NotNil(t, entry.Video)
	require.NotNil(t, entry.Resume)
	assert.Equal(t, 55.0, entry.Resume.ResumeSeconds)
}

func TestBuildDisplayEntryAddonTargetsPath(t *testing.T) {
	pb := &Playback{
		Path:   "plugin://plugin.video.youtube/play/?id=1",
		File:   "https://cdn.example.com/1.m3u8",
		Source: SourceAddon,
		Type:   MediaVideo,
		Title:  "Stream",
	}

	entry := BuildDisplayEntry(pb)

	assert.Equal(t, "plugin://plugin.video.youtube/play/?id=1", entry.Target)
	assert.Equal(t, "Stream (Addon)", entry.Label)
}

func TestBuildDisplayEntryResumeDefaultsToZero(t *testing.T) {
	pb := &Playback{Path: "/a.mkv", File: "/a.mkv", Source: SourceFile, Type: MediaVideo}

	entry := BuildDisplayEntry(pb)

	require.NotNil(t, entry.Resume)
	assert.Zero(t, entry.Resume.ResumeSeconds)
	assert.Zero(t, entry.Resume.TotalSeconds)
	assert.Zero(t, entry.Video.DurationSeconds)
	assert.Nil(t, entry.Video.DBID)
}

func TestBuildDisplayEntryArtBundle(t *testing.T) {
	pb := &Playback{
		Path:      "/a.mkv",
		File:      "/a.mkv",
		Source:    SourceFile,
		Type:      MediaVideo,
		Thumbnail: "http://x/thumb.jpg",
		Fanart:    "",
		Poster:    "http://x/poster.jpg",
	}

	entry := BuildDisplayEntry(pb)

	assert.Equal(t, map[string]string{
		"thumb":  "http://x/thumb.jpg",
		"poster": "http://x/poster.jpg",
		"icon":   "http://x/thumb.jpg",
	}, entry.Art, "empty slots are dropped, icon falls back to thumb")

	bare := BuildDisplayEntry(&Playback{Path: "/b.mkv", File: "/b.mkv", Source: SourceFile, Type: MediaVideo})
	assert.Nil(t, bare.Art)
}
