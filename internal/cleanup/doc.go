// Package cleanup decides which files of a downloaded album folder survive.
//
// When a video has chapters, the fetcher writes both the whole recording
// ("Full - <title>.mp3") and one file per chapter ("1 - <chapter>.mp3", ...).
// Selector keeps the chapters and marks the whole recording for deletion;
// a folder with a single file keeps it:
//
//	sel, err := cleanup.NewSelector(afero.NewOsFs()).Select(folder)
//	for _, f := range sel.ToDelete {
//	    // delete first
//	}
//	for _, f := range sel.ToTag {
//	    // then tag
//	}
//
// RemoveOrphans clears the folders an aborted download leaves behind (only a
// thumbnail and an info JSON).
package cleanup
