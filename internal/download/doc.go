// Package download runs the channel batch: fetching new uploads with yt-dlp
// and tagging them.
//
// # Manager
//
// For each channel of the channel list, in order, the Manager:
//
//  1. Compiles the channel's album and track patterns (all channels are
//     checked before the first fetch)
//  2. Runs yt-dlp with chapter splitting, thumbnails and info JSON, only
//     asking for uploads after the channel's last_date
//  3. Tags <library>/<channel name> with the pipeline
//  4. Stamps last_date and saves the channel list
//
// A channel whose fetch fails keeps its last_date so the next run asks for
// the same uploads again.
//
// # Basic Usage
//
//	manager := download.NewManager(settings, afero.NewOsFs(), clockwork.NewRealClock(), func(event pipeline.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	stats, err := manager.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
package download
