// Package naming turns the folder and file names written by the media fetcher
// into album and track metadata.
//
// Names are first folded into a canonical form by Normalize, then matched
// against ordered grammar lists. The first grammar that matches the whole
// string wins, even when some of its named groups captured nothing:
//
//	grammars, err := naming.NewGrammars(channel.AlbumRegexes, channel.TrackRegexes)
//	if err != nil {
//	    return err
//	}
//
//	album, err := naming.ResolveAlbum("20230115 - Various - My Album", "SomePublisher", grammars.Album)
//	// album.Title = "My Album", album.Artist = "Various", album.ReleaseDate = "2023-01-15"
//
//	track, idx, err := naming.ResolveTrack("3 - ArtistX - SongY", album, grammars.Track)
//	// track.Number = "3", track.Artist = "ArtistX", track.Title = "SongY", idx = 0
//
// Both resolvers are best effort: when a name cannot be fully resolved they
// return the partial result together with ErrUnresolvedAlbum or
// ErrUnresolvedTrack, and callers are expected to log and carry on.
//
// # Grammars
//
// A grammar is a regular expression with named groups. Album grammars may use
// release_date, album_artist and album; track grammars may use track_number,
// artist and title. Channel specific grammars are tried before the common
// fallbacks:
//
//	(?P<release_date>[0-9]{8}|NA) - (?P<album_artist>.*) - (?P<album>.*)
//	(?P<release_date>[0-9]{8}|NA) - (?P<album>.*)
//
//	(?P<track_number>\d+) - (?P<artist>.*) - (?P<title>.*)
//	(?P<track_number>\d+) - (?P<title>.*)
//	(?P<track_number>Full) - (?P<artist>.*) - (?P<title>.*)
//	(?P<track_number>Full) - (?P<title>.*)
//
// # Sort Keys
//
// SortKey moves a leading article to the end of a name so that library views
// sort "The Beatles" under B:
//
//	naming.SortKey("The Beatles", naming.DefaultSortPrefixes) // "Beatles, The"
package naming
