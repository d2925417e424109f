package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/handiism/tubetag/internal/audio"
	"github.com/handiism/tubetag/internal/config"
	"github.com/handiism/tubetag/internal/naming"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu     sync.Mutex
	calls  map[string]audio.TagFields
	failOn map[string]bool
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{calls: map[string]audio.TagFields{}, failOn: map[string]bool{}}
}

func (w *recordingWriter) WriteTags(path string, fields audio.TagFields) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failOn[filepath.Base(path)] {
		return errors.Wrapf(audio.ErrTagContainer, "%s: not an MP3 stream", path)
	}
	w.calls[path] = fields
	return nil
}

type eventLog struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (l *eventLog) record(e ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) count(level ProgressLevel) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.Level == level {
			n++
		}
	}
	return n
}

func thumbnail(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.RGBA{A: 255})
		}
	}
	for y := 2; y < 6; y++ {
		for x := 1; x < 9; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeFiles(t *testing.T, fs afero.Fs, dir string, files map[string][]byte) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(dir, 0o755))
	for name, data := range files {
		if data == nil {
			data = []byte("audio")
		}
		require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, name), data, 0o644))
	}
}

func newTestTagger(settings *config.Settings, fs afero.Fs) (*Tagger, *recordingWriter, *eventLog) {
	events := &eventLog{}
	tagger := NewTagger(settings, fs, events.record)
	writer := newRecordingWriter()
	tagger.writer = writer
	return tagger, writer, events
}

func TestTagFolder_ChapteredAlbum(t *testing.T) {
	fs := afero.NewMemMapFs()
	folder := "/lib/SomePublisher/20230115 - The Beatles - My Album"
	writeFiles(t, fs, folder, map[string][]byte{
		"Full - My Album.mp3":       nil,
		"1 - ArtistX - SongY.mp3":   nil,
		"2 \u2013 SongZ.mp3":        nil,
		"_ - thumbnail.jpg":         thumbnail(t),
		"Full - My Album.info.json": []byte("{}"),
	})

	tagger, writer, events := newTestTagger(config.DefaultSettings(), fs)
	res, err := tagger.TagFolder(context.Background(), folder, naming.DefaultGrammars())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 2, res.Tagged)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 0, res.Warnings)
	assert.Equal(t, 0, events.count(LevelWarning))

	exists, err := afero.Exists(fs, filepath.Join(folder, "Full - My Album.mp3"))
	require.NoError(t, err)
	assert.False(t, exists)

	first := writer.calls[filepath.Join(folder, "1 - ArtistX - SongY.mp3")]
	assert.Equal(t, "My Album", first.Album)
	assert.Equal(t, "The Beatles", first.AlbumArtist)
	assert.Equal(t, "Beatles, The", first.AlbumArtistSort)
	assert.Equal(t, "ArtistX", first.Artist)
	assert.Equal(t, "SongY", first.Title)
	assert.Equal(t, "1", first.TrackNumber)
	assert.Equal(t, "2023-01-15", first.ReleaseDate)
	assert.Equal(t, "SomePublisher", first.Publisher)
	require.NotEmpty(t, first.Cover)
	assert.True(t, mimetype.Detect(first.Cover).Is("image/jpeg"))

	second := writer.calls[filepath.Join(folder, "2 \u2013 SongZ.mp3")]
	assert.Equal(t, "2", second.TrackNumber)
	assert.Equal(t, "The Beatles", second.Artist)
	assert.Equal(t, "SongZ", second.Title)

	// The thumbnail was cropped in place to its 8x4 content.
	data, err := afero.ReadFile(fs, filepath.Join(folder, "_ - thumbnail.jpg"))
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Width)
	assert.Equal(t, 4, cfg.Height)
}

func TestTagFolder_SingleFullRecording(t *testing.T) {
	fs := afero.NewMemMapFs()
	folder := "/lib/SomePublisher/20230115 - My Album"
	writeFiles(t, fs, folder, map[string][]byte{"Full - My Album.mp3": nil})

	tagger, writer, _ := newTestTagger(config.DefaultSettings(), fs)
	res, err := tagger.TagFolder(context.Background(), folder, naming.DefaultGrammars())
	require.NoError(t, err)

	assert.Equal(t, 0, res.Deleted)
	assert.Equal(t, 1, res.Tagged)

	fields := writer.calls[filepath.Join(folder, "Full - My Album.mp3")]
	assert.Equal(t, "1", fields.TrackNumber)
	assert.Equal(t, "SomePublisher", fields.Artist)
	assert.Equal(t, "SomePublisher", fields.AlbumArtist)
	assert.Equal(t, "My Album", fields.Title)
	assert.Nil(t, fields.Cover)
}

func TestTagFolder_UnresolvedNamesStillTagged(t *testing.T) {
	fs := afero.NewMemMapFs()
	folder := "/lib/Pub/Some random folder"
	writeFiles(t, fs, folder, map[string][]byte{"notes.mp3": nil})

	tagger, writer, events := newTestTagger(config.DefaultSettings(), fs)
	res, err := tagger.TagFolder(context.Background(), folder, naming.DefaultGrammars())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Warnings)
	assert.Equal(t, 2, events.count(LevelWarning))
	assert.Equal(t, 1, res.Tagged)

	fields := writer.calls[filepath.Join(folder, "notes.mp3")]
	assert.Empty(t, fields.Album)
	assert.Equal(t, "Pub", fields.AlbumArtist)
	assert.Equal(t, "Pub", fields.Artist)
	assert.Equal(t, "Pub", fields.Publisher)
}

func TestTagFolder_TagErrorDoesNotStopSiblings(t *testing.T) {
	fs := afero.NewMemMapFs()
	folder := "/lib/Pub/20230115 - Album"
	writeFiles(t, fs, folder, map[string][]byte{"1 - A.mp3": nil, "2 - B.mp3": nil, "3 - C.mp3": nil})

	tagger, writer, events := newTestTagger(config.DefaultSettings(), fs)
	writer.failOn["2 - B.mp3"] = true

	res, err := tagger.TagFolder(context.Background(), folder, naming.DefaultGrammars())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Tagged)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, events.count(LevelError))
	assert.Len(t, res.Album.Tracks, 2)
	assert.Contains(t, writer.calls, filepath.Join(folder, "3 - C.mp3"))
}

func TestTagFolder_UnreadableCoverSkipped(t *testing.T) {
	fs := afero.NewMemMapFs()
	folder := "/lib/Pub/20230115 - Album"
	writeFiles(t, fs, folder, map[string][]byte{"1 - A.mp3": nil, "_ - thumbnail.jpg": []byte("broken")})

	tagger, writer, events := newTestTagger(config.DefaultSettings(), fs)
	res, err := tagger.TagFolder(context.Background(), folder, naming.DefaultGrammars())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Warnings)
	assert.Equal(t, 1, events.count(LevelWarning))
	assert.Equal(t, 1, res.Tagged)
	assert.Empty(t, res.Album.CoverPath)
	assert.Nil(t, writer.calls[filepath.Join(folder, "1 - A.mp3")].Cover)
}

func TestTagFolder_DryRunWritesNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	folder := "/lib/Pub/20230115 - Album"
	thumb := thumbnail(t)
	writeFiles(t, fs, folder, map[string][]byte{"Full - Album.mp3": nil, "1 - A.mp3": nil, "_ - thumbnail.jpg": thumb})

	settings := config.DefaultSettings()
	settings.DryRun = true
	settings.CreatePlaylist = true

	tagger, writer, _ := newTestTagger(settings, fs)
	res, err := tagger.TagFolder(context.Background(), folder, naming.DefaultGrammars())
	require.NoError(t, err)

	assert.Equal(t, 0, res.Deleted)
	assert.Equal(t, 1, res.Tagged)
	assert.Empty(t, writer.calls)

	exists, err := afero.Exists(fs, filepath.Join(folder, "Full - Album.mp3"))
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := afero.ReadFile(fs, filepath.Join(folder, "_ - thumbnail.jpg"))
	require.NoError(t, err)
	assert.Equal(t, thumb, data)

	exists, err = afero.Exists(fs, filepath.Join(folder, "Album.m3u"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTagFolder_Playlist(t *testing.T) {
	fs := afero.NewMemMapFs()
	folder := "/lib/Pub/20230115 - Album"
	writeFiles(t, fs, folder, map[string][]byte{"1 - A.mp3": nil, "2 - B.mp3": nil})

	settings := config.DefaultSettings()
	settings.CreatePlaylist = true
	settings.M3UExtended = false

	tagger, _, _ := newTestTagger(settings, fs)
	res, err := tagger.TagFolder(context.Background(), folder, naming.DefaultGrammars())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(folder, "Album.m3u"), res.Album.PlaylistPath)

	data, err := afero.ReadFile(fs, res.Album.PlaylistPath)
	require.NoError(t, err)
	assert.Equal(t, "1 - A.mp3\n2 - B.mp3\n", string(data))
}

func TestTagFolder_ChannelGrammars(t *testing.T) {
	fs := afero.NewMemMapFs()
	folder := "/lib/Chanson/20230115 - Brassens - Les Copains (1964)"
	writeFiles(t, fs, folder, map[string][]byte{"4 - 4b. La Mauvaise Reputation.mp3": nil, "5 - 5. Le Gorille.mp3": nil})

	grammars, err := naming.NewGrammars(
		[]string{`(?:[0-9]{8}|NA) - (?P<album_artist>.*) - (?P<album>.*) \((?P<release_date>\d+)\)`},
		[]string{`(?P<track_number>\d+) - (?:\d+\w*)(?:\s)*\.(?:\s)*(?P<title>.*)`},
	)
	require.NoError(t, err)

	tagger, writer, _ := newTestTagger(config.DefaultSettings(), fs)
	_, err = tagger.TagFolder(context.Background(), folder, grammars)
	require.NoError(t, err)

	fields := writer.calls[filepath.Join(folder, "4 - 4b. La Mauvaise Reputation.mp3")]
	assert.Equal(t, "Les Copains", fields.Album)
	assert.Equal(t, "1964", fields.ReleaseDate)
	assert.Equal(t, "Brassens", fields.Artist)
	assert.Equal(t, "La Mauvaise Reputation", fields.Title)
	assert.Equal(t, "4", fields.TrackNumber)
}

func TestTagPublisher(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/lib/Pub/20230101 - First", map[string][]byte{"Full - First.mp3": nil})
	writeFiles(t, fs, "/lib/Pub/20230202 - Second", map[string][]byte{"Full - Second.mp3": nil, "1 - A.mp3": nil, "2 - B.mp3": nil})
	writeFiles(t, fs, "/lib/Pub/20230303 - Aborted", map[string][]byte{"_ - thumbnail.jpg": thumbnail(t), "Full - Aborted.info.json": []byte("{}")})

	settings := config.DefaultSettings()
	settings.MaxConcurrentFolders = 2

	tagger, writer, _ := newTestTagger(settings, fs)
	stats, err := tagger.TagPublisher(context.Background(), "/lib/Pub", naming.DefaultGrammars())
	require.NoError(t, err)

	assert.Equal(t, RunStats{Folders: 2, Tagged: 3, Deleted: 1, OrphansRemoved: 1}, stats)
	assert.Len(t, writer.calls, 3)

	exists, err := afero.DirExists(fs, "/lib/Pub/20230303 - Aborted")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTagFolders_FailedFolderCounted(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/lib/Pub/20230101 - First", map[string][]byte{"1 - A.mp3": nil})

	settings := config.DefaultSettings()
	settings.MaxConcurrentFolders = 4

	tagger, _, events := newTestTagger(settings, fs)
	stats, err := tagger.TagFolders(context.Background(), []string{"/lib/Pub/missing", "/lib/Pub/20230101 - First"}, naming.DefaultGrammars())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Folders)
	assert.Equal(t, 1, stats.FailedFolders)
	assert.Equal(t, 1, stats.Tagged)
	assert.Equal(t, 1, events.count(LevelError))
}

func TestTagFolders_Cancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/lib/Pub/20230101 - First", map[string][]byte{"1 - A.mp3": nil})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tagger, writer, _ := newTestTagger(config.DefaultSettings(), fs)
	_, err := tagger.TagFolders(ctx, []string{"/lib/Pub/20230101 - First"}, naming.DefaultGrammars())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, writer.calls)
}

func TestTagFolder_RealFiles(t *testing.T) {
	library := t.TempDir()
	folder := filepath.Join(library, "SomePublisher", "20230115 - Various - My Album")
	require.NoError(t, os.MkdirAll(folder, 0o755))

	frame := make([]byte, 417)
	copy(frame, []byte{0xFF, 0xFB, 0x90, 0x00})
	mp3 := bytes.Repeat(frame, 4)
	require.NoError(t, os.WriteFile(filepath.Join(folder, "3 - ArtistX - SongY.mp3"), mp3, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "4 - Broken.mp3"), []byte("not audio"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "_ - thumbnail.jpg"), thumbnail(t), 0o644))

	events := &eventLog{}
	tagger := NewTagger(config.DefaultSettings(), afero.NewOsFs(), events.record)
	res, err := tagger.TagFolder(context.Background(), folder, naming.DefaultGrammars())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Tagged)
	assert.Equal(t, 1, res.Failed)

	got, err := audio.ReadTags(filepath.Join(folder, "3 - ArtistX - SongY.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "My Album", got.Album)
	assert.Equal(t, "Various", got.AlbumArtist)
	assert.Equal(t, "ArtistX", got.Artist)
	assert.Equal(t, "SongY", got.Title)
	assert.Equal(t, "3", got.TrackNumber)
	assert.Equal(t, "2023-01-15", got.ReleaseDate)
	assert.Equal(t, "SomePublisher", got.Publisher)
	assert.NotEmpty(t, got.Cover)
}

func TestDiscover(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/lib/B/20230101 - Two", map[string][]byte{"1 - A.mp3": nil})
	writeFiles(t, fs, "/lib/A/20230101 - One", map[string][]byte{"1 - A.mp3": nil})
	writeFiles(t, fs, "/lib/A/20220101 - Zero", nil)
	writeFiles(t, fs, "/lib", map[string][]byte{"notes.txt": []byte("x")})

	publishers, err := Discover(fs, "/lib")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("/lib", "A"), filepath.Join("/lib", "B")}, publishers)

	albums, err := DiscoverLibrary(fs, "/lib")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("/lib", "A", "20220101 - Zero"),
		filepath.Join("/lib", "A", "20230101 - One"),
		filepath.Join("/lib", "B", "20230101 - Two"),
	}, albums)

	_, err = Discover(fs, "/missing")
	assert.Error(t, err)
}

func TestTagLibrary_UsesChannelGrammars(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/lib/Chanson/20230115 - Brassens - Les Copains (1964)", map[string][]byte{"5 - 5. Le Gorille.mp3": nil})
	writeFiles(t, fs, "/lib/Other/20230101 - Somebody - Thing", map[string][]byte{"1 - Song.mp3": nil, "2 - Tune.mp3": nil})

	grammars, err := NewChannelGrammars([]config.Channel{{
		Name:         "Chanson",
		URL:          "https://www.youtube.com/@chanson",
		AlbumRegexes: []string{`(?:[0-9]{8}|NA) - (?P<album_artist>.*) - (?P<album>.*) \((?P<release_date>\d+)\)`},
		TrackRegexes: []string{`(?P<track_number>\d+) - (?:\d+\w*)(?:\s)*\.(?:\s)*(?P<title>.*)`},
	}})
	require.NoError(t, err)

	tagger, writer, _ := newTestTagger(config.DefaultSettings(), fs)
	stats, err := tagger.TagLibrary(context.Background(), "/lib", grammars)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Folders)
	assert.Equal(t, 3, stats.Tagged)
	assert.Equal(t, 2, tagger.Processed())

	chanson := writer.calls[filepath.Join("/lib/Chanson/20230115 - Brassens - Les Copains (1964)", "5 - 5. Le Gorille.mp3")]
	assert.Equal(t, "Le Gorille", chanson.Title)
	assert.Equal(t, "1964", chanson.ReleaseDate)

	other := writer.calls[filepath.Join("/lib/Other/20230101 - Somebody - Thing", "2 - Tune.mp3")]
	assert.Equal(t, "Thing", other.Album)
	assert.Equal(t, "Tune", other.Title)
}

func TestNewChannelGrammars_BadPattern(t *testing.T) {
	_, err := NewChannelGrammars([]config.Channel{{Name: "Bad", AlbumRegexes: []string{`(?P<album>`}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, naming.ErrInvalidGrammar)
	assert.Contains(t, err.Error(), `"Bad"`)
}

func TestTagFolders_SucceedsWithoutError(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/lib/Pub/20230101 - First", map[string][]byte{"1 - A.mp3": nil})
	writeFiles(t, fs, "/lib/Pub/20230202 - Second", map[string][]byte{"1 - B.mp3": nil})

	for _, limit := range []int{1, 3} {
		settings := config.DefaultSettings()
		settings.MaxConcurrentFolders = limit

		tagger, writer, _ := newTestTagger(settings, fs)
		stats, err := tagger.TagFolders(context.Background(), []string{"/lib/Pub/20230101 - First", "/lib/Pub/20230202 - Second"}, naming.DefaultGrammars())
		require.NoError(t, err, "limit %d", limit)
		assert.Equal(t, 2, stats.Folders)
		assert.Len(t, writer.calls, 2)
	}
}

func TestTagFolders_ProgressSerialized(t *testing.T) {
	fs := afero.NewMemMapFs()
	var folders []string
	for _, name := range []string{"20230101 - A", "20230102 - B", "20230103 - C", "20230104 - D", "20230105 - E", "20230106 - F"} {
		folder := filepath.Join("/lib/Pub", name)
		writeFiles(t, fs, folder, map[string][]byte{"1 - One.mp3": nil, "2 - Two.mp3": nil, "Full - All.mp3": nil})
		folders = append(folders, folder)
	}

	settings := config.DefaultSettings()
	settings.MaxConcurrentFolders = 4

	var (
		inFlight atomic.Int32
		overlaps atomic.Int32
		events   []ProgressEvent
	)
	tagger := NewTagger(settings, fs, func(e ProgressEvent) {
		if inFlight.Add(1) > 1 {
			overlaps.Add(1)
		}
		events = append(events, e)
		time.Sleep(time.Millisecond)
		inFlight.Add(-1)
	})
	tagger.writer = newRecordingWriter()

	stats, err := tagger.TagFolders(context.Background(), folders, naming.DefaultGrammars())
	require.NoError(t, err)

	assert.Equal(t, 6, stats.Folders)
	assert.Equal(t, 12, stats.Tagged)
	assert.Zero(t, overlaps.Load())
	assert.NotEmpty(t, events)
	assert.Equal(t, 6, tagger.Processed())
}
