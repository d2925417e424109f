// Package ioutils provides file system and image processing utilities.
//
// Every function goes through an afero.Fs, so the folder pass can be tested
// on an in-memory filesystem.
//
// # File Operations
//
//	// Remove a redundant recording; absence is fine
//	err := ioutils.DeleteFile(ctx, fs, "/music/Pub/Album/Full - Album.mp3")
//
//	// Write a playlist next to the tracks
//	err := ioutils.WriteFile(ctx, fs, "/music/Pub/Album/Album.m3u", []byte("..."))
//
// # Image Processing
//
// The ImageService handles cover art manipulation:
//
//	svc := ioutils.NewImageService(fs, 0)
//
//	// Crop black bars off a thumbnail, in place
//	err := svc.CropToContent(ctx, "/music/Pub/Album/_ - thumbnail.jpg")
//
//	// Make any image embeddable: JPEG, at most 1000 pixels wide or high
//	cover, err := svc.PrepareCover(ctx, data, 1000)
//
// Decoding failures and blank images are reported as ErrUnreadableCover.
package ioutils
