// Package pipeline runs the folder tagging pass over a downloaded library.
//
// # Tagger
//
// The Tagger takes each album folder through:
//
//  1. Resolve album metadata from the folder name
//  2. Select the canonical audio files
//  3. Delete the redundant full recording
//  4. Crop the thumbnail and prepare it as cover art
//  5. Resolve each file name and write its tag
//  6. Write a playlist (optional)
//
// # Basic Usage
//
//	tagger := pipeline.NewTagger(settings, afero.NewOsFs(), func(event pipeline.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	grammars, err := naming.NewGrammars(channel.AlbumRegexes, channel.TrackRegexes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stats, err := tagger.TagPublisher(ctx, "/music/SomePublisher", grammars)
//
// # Concurrency
//
// Folders are independent. settings.MaxConcurrentFolders bounds how many
// are tagged at once; the default of 1 keeps the pass strictly sequential.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	    Folder  string
//	}
//
// Unresolved names and unreadable covers are warnings; files that cannot be
// tagged are errors. Neither aborts the pass.
package pipeline
