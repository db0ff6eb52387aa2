package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPriority(t *testing.T) {
	tests := []struct {
		name string
		sig  Signals
		want Source
	}{
		{
			name: "library id wins over everything",
			sig:  Signals{DBID: intp(42), LiveTV: true, Path: "pvr://recordings/tv/a.pvr"},
			want: SourceKodiLibrary,
		},
		{
			name: "zero dbid is not a library item",
			sig:  Signals{DBID: intp(0), Path: "/video.mkv"},
			want: SourceFile,
		},
		{
			name: "live tv beats recording path",
			sig:  Signals{LiveTV: true, Path: "pvr://recordings/tv/a.pvr"},
			want: SourcePVRLive,
		},
		{
			name: "live radio",
			sig:  Signals{LiveRadio: true, Path: "pvr://channels/radio/1"},
			want: SourcePVRLive,
		},
		{
			name: "recording by path prefix",
			sig:  Signals{Path: "pvr://recordings/tv/a.pvr"},
			want: SourcePVRRecording,
		},
		{
			name: "recording prefix is case-insensitive",
			sig:  Signals{Path: "PVR://Recordings/TV/A.pvr"},
			want: SourcePVRRecording,
		},
		{
			name: "recording nested under provider segment",
			sig:  Signals{Path: "pvr://client0/recordings/a.pvr"},
			want: SourcePVRRecording,
		},
		{
			name: "recording beats addon heuristics",
			sig:  Signals{Path: "pvr://recordings/tv/a.pvr", AddonID: "plugin.video.x"},
			want: SourcePVRRecording,
		},
		{
			name: "plain file",
			sig:  Signals{Path: "/media/movies/Alien.mkv"},
			want: SourceFile,
		},
		{
			name: "smb file",
			sig:  Signals{Path: "smb://nas/movies/Alien.mkv"},
			want: SourceFile,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.sig))
		})
	}
}

func TestClassifyAddonRules(t *testing.T) {
	tests := []struct {
		name     string
		sig      Signals
		wantRule string
	}{
		{
			name:     "plugin locator",
			sig:      Signals{Path: "plugin://plugin.video.youtube/play/?id=1"},
			wantRule: "plugin-locator",
		},
		{
			name:     "plugin locator scheme case-insensitive",
			sig:      Signals{Path: "PLUGIN://plugin.video.youtube/play"},
			wantRule: "plugin-locator",
		},
		{
			name:     "focused list item is plugin",
			sig:      Signals{Path: "http://cdn.example.com/hls/live.m3u8", ListItemPath: "plugin://plugin.video.catchup/ch/9"},
			wantRule: "plugin-listitem",
		},
		{
			name:     "addon id property",
			sig:      Signals{Path: "http://cdn.example.com/hls/live.m3u8", AddonID: "plugin.video.catchup"},
			wantRule: "addon-id-property",
		},
		{
			name:     "plugin container",
			sig:      Signals{Path: "http://cdn.example.com/hls/live.m3u8", ContainerPath: "plugin://plugin.video.catchup/list"},
			wantRule: "plugin-container",
		},
		{
			name:     "loopback proxy stream",
			sig:      Signals{Path: "http://127.0.0.1:52104/stream.m3u8"},
			wantRule: "http-with-addon-context",
		},
		{
			name:     "localhost proxy stream",
			sig:      Signals{Path: "http://localhost:8080/proxy/1"},
			wantRule: "http-with-addon-context",
		},
		{
			name:     "addon hint in url",
			sig:      Signals{Path: "https://host.example.com/addons/stream/4"},
			wantRule: "http-with-addon-context",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := MatchedAddonRule(tt.sig)
			assert.True(t, ok)
			assert.Equal(t, tt.wantRule, rule)
			assert.Equal(t, SourceAddon, Classify(tt.sig))
		})
	}
}

func TestClassifyHTTPWithoutAddonContextIsFile(t *testing.T) {
	tests := []struct {
		name string
		sig  Signals
	}{
		{"bare remote stream", Signals{Path: "https://cdn.example.com/movie.mp4"}},
		{"webdav mount", Signals{Path: "https://files.example.com/webdav/movie.mkv", AddonID: ""}},
		{"dav path segment", Signals{Path: "https://files.example.com/dav/movie.mkv"}},
		{"cloud provider host", Signals{Path: "https://dl.dropboxusercontent.com/s/abc/movie.mkv"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := MatchedAddonRule(tt.sig)
			assert.False(t, ok)
			assert.Equal(t, SourceFile, Classify(tt.sig))
		})
	}
}

// Cloud markers only suppress the http heuristic; an explicit plugin
// signal still wins.
func TestClassifyCloudURLWithPluginContainer(t *testing.T) {
	sig := Signals{
		Path:          "https://dl.dropboxusercontent.com/s/abc/movie.mkv",
		ContainerPath: "plugin://plugin.video.cloudbox/files",
	}
	rule, ok := MatchedAddonRule(sig)
	assert.True(t, ok)
	assert.Equal(t, "plugin-container", rule)
}

func TestClassifyIsPure(t *testing.T) {
	sig := Signals{Path: "plugin://plugin.video.x/play", AddonID: "plugin.video.x"}
	first := Classify(sig)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Classify(sig))
	}
}
