// Package model defines the core data structures used throughout
// tubetag.
//
// # Album
//
// Album holds the metadata resolved from an album folder name plus the
// folder's paths:
//
//	album, _ := naming.ResolveAlbum(folderName, publisher, grammars.Album)
//	album.SetPaths(folder, pathConfig)
//	fmt.Println(album.PlaylistPath) // Where to write the playlist
//
// # Track
//
// Track holds the metadata resolved from one audio file name:
//
//	track, _, _ := naming.ResolveTrack(model.BaseName(path), album, grammars.Track)
//	track.Path = path
//
// # Path Configuration
//
// PathConfig controls how album side files are named using placeholders:
//
//	cfg := &model.PathConfig{
//	    PlaylistFileNameFormat: "{album}",
//	    PlaylistFormat:         model.PlaylistFormatM3U,
//	}
//
// Available placeholders: {album}, {artist}, {publisher}, {date}, {year}
package model
