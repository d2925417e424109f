package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/handiism/tubetag/internal/audio"
	"github.com/handiism/tubetag/internal/cleanup"
	"github.com/handiism/tubetag/internal/config"
	ioutils "github.com/handiism/tubetag/internal/io"
	"github.com/handiism/tubetag/internal/model"
	"github.com/handiism/tubetag/internal/naming"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// TagWriter writes a complete tag to one audio file.
type TagWriter interface {
	WriteTags(path string, fields audio.TagFields) error
}

// FolderResult is the outcome of tagging one album folder.
type FolderResult struct {
	Folder string
	Album  model.Album

	Tagged   int
	Failed   int
	Deleted  int
	Warnings int
}

// Tagger runs the folder tagging pass.
//
// Per album folder, in this order: resolve the album from the folder name,
// select the canonical files, delete the redundant full recording, crop the
// thumbnail, then resolve and tag each file. Unresolved names and unreadable
// covers are reported as warnings; a file that cannot be tagged is reported
// as an error. Neither stops the other files or folders.
//
// onProgress calls are serialized, even when MaxConcurrentFolders is
// above 1.
type Tagger struct {
	settings *config.Settings
	fs       afero.Fs

	selector *cleanup.Selector
	images   *ioutils.ImageService
	writer   TagWriter
	playlist *audio.PlaylistCreator

	processed atomic.Int32

	progressMu sync.Mutex
	onProgress func(ProgressEvent)
}

// NewTagger creates a Tagger reading and writing through fs.
func NewTagger(settings *config.Settings, fs afero.Fs, onProgress func(ProgressEvent)) *Tagger {
	tagCfg := audio.DefaultTagConfig()
	tagCfg.EmbedCover = settings.SaveCoverInTags

	return &Tagger{
		settings:   settings,
		fs:         fs,
		selector:   cleanup.NewSelector(fs),
		images:     ioutils.NewImageService(fs, settings.BlackThreshold),
		writer:     audio.NewTagger(tagCfg),
		playlist:   audio.NewPlaylistCreator(model.ParsePlaylistFormat(settings.PlaylistFormat), settings.M3UExtended),
		onProgress: onProgress,
	}
}

// Processed returns how many folders TagFolders has finished so far.
func (t *Tagger) Processed() int {
	return int(t.processed.Load())
}

// TagLibrary tags every publisher directory under library with the grammars
// of its channel.
func (t *Tagger) TagLibrary(ctx context.Context, library string, grammars *ChannelGrammars) (RunStats, error) {
	var stats RunStats

	publishers, err := Discover(t.fs, library)
	if err != nil {
		return stats, err
	}
	for _, dir := range publishers {
		pubStats, err := t.TagPublisher(ctx, dir, grammars.For(filepath.Base(dir)))
		stats.Merge(pubStats)
		if err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// TagPublisher removes the orphan folders under publisherDir and tags every
// album folder left.
func (t *Tagger) TagPublisher(ctx context.Context, publisherDir string, grammars naming.Grammars) (RunStats, error) {
	var stats RunStats

	if t.settings.DryRun {
		t.reportOrphans(publisherDir)
	} else {
		removed, err := cleanup.RemoveOrphans(t.fs, publisherDir)
		for _, folder := range removed {
			t.progress(ProgressEvent{Message: fmt.Sprintf("Removed empty download %s", filepath.Base(folder)), Level: LevelVerbose, Folder: folder})
		}
		stats.OrphansRemoved = len(removed)
		if err != nil {
			return stats, err
		}
	}

	folders, err := Discover(t.fs, publisherDir)
	if err != nil {
		return stats, err
	}

	folderStats, err := t.TagFolders(ctx, folders, grammars)
	stats.Merge(folderStats)
	return stats, err
}

func (t *Tagger) reportOrphans(publisherDir string) {
	folders, err := Discover(t.fs, publisherDir)
	if err != nil {
		return
	}
	for _, folder := range folders {
		if orphan, _ := cleanup.IsOrphan(t.fs, folder); orphan {
			t.progress(ProgressEvent{Message: fmt.Sprintf("Would remove empty download %s", filepath.Base(folder)), Level: LevelInfo, Folder: folder})
		}
	}
}

// TagFolders tags album folders with at most MaxConcurrentFolders in flight.
//
// A folder that fails is reported and counted; only context cancellation
// stops the pass.
func (t *Tagger) TagFolders(ctx context.Context, folders []string, grammars naming.Grammars) (RunStats, error) {
	var (
		stats RunStats
		mu    sync.Mutex
	)

	limit := t.settings.MaxConcurrentFolders
	if limit < 1 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, folder := range folders {
		folder := folder
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := t.TagFolder(gctx, folder, grammars)
			t.processed.Add(1)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				stats.FailedFolders++
				t.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging %s: %v", filepath.Base(folder), err), Level: LevelError, Folder: folder})
				return nil
			}
			stats.Add(res)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, ctx.Err()
}

// TagFolder runs the tagging pass over one album folder whose parent
// directory is named after the publisher.
func (t *Tagger) TagFolder(ctx context.Context, folder string, grammars naming.Grammars) (*FolderResult, error) {
	res := &FolderResult{Folder: folder}
	publisher := filepath.Base(filepath.Dir(folder))

	album, diag := naming.ResolveAlbum(filepath.Base(folder), publisher, grammars.Album)
	if diag != nil {
		res.Warnings++
		t.progress(ProgressEvent{Message: diag.Error(), Level: LevelWarning, Folder: folder})
	}
	album.Path = folder

	sel, err := t.selector.Select(folder)
	if err != nil {
		return res, err
	}

	for _, f := range sel.ToDelete {
		if t.settings.DryRun {
			t.progress(ProgressEvent{Message: fmt.Sprintf("Would remove %s", filepath.Base(f)), Level: LevelInfo, Folder: folder})
			continue
		}
		if err := ioutils.DeleteFile(ctx, t.fs, f); err != nil {
			return res, err
		}
		res.Deleted++
		t.progress(ProgressEvent{Message: fmt.Sprintf("Removed %s, chapters exist", filepath.Base(f)), Level: LevelVerbose, Folder: folder})
	}

	cover := t.cover(ctx, &album, res)

	album.ArtistSort = naming.SortKey(album.Artist, naming.DefaultSortPrefixes)

	for _, f := range sel.ToTag {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		track, _, diag := naming.ResolveTrack(model.BaseName(f), album, grammars.Track)
		if diag != nil {
			res.Warnings++
			t.progress(ProgressEvent{Message: diag.Error(), Level: LevelWarning, Folder: folder})
		}
		track.Path = f

		fields := audio.TagFields{
			Album:           album.Title,
			AlbumArtist:     album.Artist,
			AlbumArtistSort: album.ArtistSort,
			Artist:          track.Artist,
			Title:           track.Title,
			TrackNumber:     track.Number,
			ReleaseDate:     album.ReleaseDate,
			Publisher:       album.Publisher,
			Cover:           cover,
		}

		if t.settings.DryRun {
			t.progress(ProgressEvent{
				Message: fmt.Sprintf("Would tag %s: %s. %s - %s [%s]", filepath.Base(f), track.Number, track.Artist, track.Title, album.Title),
				Level:   LevelInfo,
				Folder:  folder,
			})
			res.Tagged++
			continue
		}

		if err := t.writer.WriteTags(f, fields); err != nil {
			res.Failed++
			t.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging %s: %v", filepath.Base(f), err), Level: LevelError, Folder: folder})
			continue
		}
		res.Tagged++
		album.Tracks = append(album.Tracks, &track)
		t.progress(ProgressEvent{Message: fmt.Sprintf("Tagged: %s", filepath.Base(f)), Level: LevelVerbose, Folder: folder})
	}

	t.writePlaylist(ctx, &album)

	res.Album = album
	if res.Failed == 0 {
		t.progress(ProgressEvent{Message: fmt.Sprintf("Tagged album: %s - %s (%d tracks)", album.Artist, album.Title, res.Tagged), Level: LevelSuccess, Folder: folder})
	} else {
		t.progress(ProgressEvent{Message: fmt.Sprintf("Finished %s, some tracks failed", album.Title), Level: LevelWarning, Folder: folder})
	}
	return res, nil
}

// cover crops the folder thumbnail and returns the bytes to embed, or nil.
func (t *Tagger) cover(ctx context.Context, album *model.Album, res *FolderResult) []byte {
	path, err := cleanup.FindCover(t.fs, album.Path)
	if err != nil || path == "" {
		return nil
	}
	album.CoverPath = path

	if t.settings.CropCovers && !t.settings.DryRun {
		if err := t.images.CropToContent(ctx, path); err != nil {
			t.coverWarning(album, res, err)
			return nil
		}
	}

	if !t.settings.SaveCoverInTags {
		return nil
	}

	data, err := afero.ReadFile(t.fs, path)
	if err != nil {
		t.coverWarning(album, res, err)
		return nil
	}
	cover, err := t.images.PrepareCover(ctx, data, t.settings.CoverMaxSize)
	if err != nil {
		t.coverWarning(album, res, err)
		return nil
	}
	return cover
}

func (t *Tagger) coverWarning(album *model.Album, res *FolderResult, err error) {
	res.Warnings++
	album.CoverPath = ""
	t.progress(ProgressEvent{Message: fmt.Sprintf("Skipping cover: %v", err), Level: LevelWarning, Folder: album.Path})
}

func (t *Tagger) writePlaylist(ctx context.Context, album *model.Album) {
	album.SetPaths(album.Path, t.settings.ToPathConfig())
	if album.PlaylistPath == "" || len(album.Tracks) == 0 || t.settings.DryRun {
		return
	}

	content := t.playlist.CreatePlaylist(album)
	if err := ioutils.WriteFile(ctx, t.fs, album.PlaylistPath, []byte(content)); err != nil {
		t.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning, Folder: album.Path})
		return
	}
	t.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist for %s", album.Title), Level: LevelSuccess, Folder: album.Path})
}

func (t *Tagger) progress(event ProgressEvent) {
	if t.onProgress == nil {
		return
	}
	t.progressMu.Lock()
	defer t.progressMu.Unlock()
	t.onProgress(event)
}
