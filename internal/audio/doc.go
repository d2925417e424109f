// Package audio writes and reads the ID3 tags of resolved tracks and
// generates album playlists.
//
// # ID3 Tagging
//
// Tagger replaces the whole tag of an MP3 file:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.WriteTags(path, audio.TagFields{Album: "My Album", Title: "SongY", TrackNumber: "3"})
//
// Frames written: TALB, TIT2, TPE1, TPE2, TPUB, TRCK, TYER, TSO2 and an APIC
// front cover. A file that is not an MP3 stream yields ErrTagContainer.
//
// # Inspection
//
// ReadTags reads a tag back with dhowden/tag:
//
//	summary, err := audio.ReadTags(path)
//	fmt.Println(summary.Artist, summary.Title)
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist(album)
//
// Supported formats: M3U (optionally extended), PLS, WPL and ZPL.
package audio
