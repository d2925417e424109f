package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ErrUnreadableCover means a cover image could not be decoded or holds no
// visible content. The caller drops the cover and keeps tagging.
var ErrUnreadableCover = errors.New("cover cannot be opened")

// jpegQuality is used for every JPEG this package encodes.
const jpegQuality = 90

// ImageService provides image processing operations for cover art.
//
// ImageService is used to:
//   - Crop the letterbox bars the fetcher leaves around video thumbnails
//   - Resize covers to fit maximum dimensions before embedding
//   - Convert covers to JPEG, the only format written to APIC frames
//
// Example usage:
//
//	svc := NewImageService(afero.NewOsFs(), 0)
//
//	// Crop the thumbnail in place
//	if err := svc.CropToContent(ctx, "/music/Pub/Album/_ - thumbnail.jpg"); err != nil {
//	    // errors.Is(err, ErrUnreadableCover): go on without a cover
//	}
//
//	// Read it back, ready for the tag
//	cover, _ := svc.PrepareCover(ctx, data, 1000)
type ImageService struct {
	fs afero.Fs

	// threshold is the channel value a pixel must exceed to count as content.
	threshold uint8
}

// NewImageService creates a new ImageService working on fs.
//
// blackThreshold 0 keeps every pixel that is not pure black, which is what
// the fetcher's letterboxing produces. Noisy thumbnails may need a few units.
func NewImageService(fs afero.Fs, blackThreshold uint8) *ImageService {
	return &ImageService{fs: fs, threshold: blackThreshold}
}

// CropToContent crops the image at path to the bounding box of its non-black
// pixels and overwrites it as JPEG.
//
// The box is inclusive: a single bright pixel gives a 1x1 image. An image
// without any content, or one that cannot be decoded, gives
// ErrUnreadableCover and the file is left untouched.
func (s *ImageService) CropToContent(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return errors.Wrapf(ErrUnreadableCover, "%s: %v", path, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return errors.Wrapf(ErrUnreadableCover, "%s: %v", path, err)
	}

	box, ok := s.ContentBounds(img)
	if !ok {
		return errors.Wrapf(ErrUnreadableCover, "%s: image is blank", path)
	}

	dst := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	draw.Copy(dst, image.Point{}, img, box, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return errors.WithStack(err)
	}

	return WriteFile(ctx, s.fs, path, buf.Bytes())
}

// ContentBounds returns the smallest rectangle holding every pixel with a
// color channel above the threshold. Alpha is ignored. ok is false when
// there is no such pixel.
func (s *ImageService) ContentBounds(img image.Image) (box image.Rectangle, ok bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	limit := uint32(s.threshold)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r>>8 <= limit && g>>8 <= limit && bl>>8 <= limit {
				continue
			}
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}

	if maxX < minX || maxY < minY {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// PrepareCover turns a thumbnail into bytes fit for an APIC frame: JPEG, and
// no larger than maxSize on either side when maxSize is positive.
//
// JPEG input that needs no resizing is returned unchanged.
func (s *ImageService) PrepareCover(ctx context.Context, data []byte, maxSize int) ([]byte, error) {
	mtype := mimetype.Detect(data)
	if !isImage(mtype) {
		return nil, errors.Wrapf(ErrUnreadableCover, "unexpected content type %s", mtype.String())
	}

	if maxSize > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrapf(ErrUnreadableCover, "%v", err)
		}
		if cfg.Width > maxSize || cfg.Height > maxSize {
			return s.ResizeImage(ctx, data, maxSize, maxSize)
		}
	}

	if mtype.Is("image/jpeg") {
		return data, nil
	}
	return s.ConvertToJPEG(ctx, data)
}

func isImage(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("image/jpeg") || m.Is("image/png") || m.Is("image/webp") {
			return true
		}
	}
	return false
}

// ResizeImage resizes an image to fit within the specified maximum dimensions.
//
// The aspect ratio is preserved and the Catmull-Rom kernel is used. The
// result is always JPEG, even when no resizing was needed.
//
// Example:
//
//	// A 1280x720 thumbnail becomes 1000x562
//	resized, err := svc.ResizeImage(ctx, imageData, 1000, 1000)
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(ErrUnreadableCover, "%v", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxWidth || height > maxHeight {
		ratio := float64(width) / float64(height)
		if float64(maxWidth)/float64(maxHeight) > ratio {
			// Height is the limiting factor
			width = int(float64(maxHeight) * ratio)
			height = maxHeight
		} else {
			height = int(float64(maxWidth) / ratio)
			width = maxWidth
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, errors.WithStack(err)
	}

	return buf.Bytes(), nil
}

// ConvertToJPEG re-encodes an image as JPEG.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(ErrUnreadableCover, "%v", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, errors.WithStack(err)
	}

	return buf.Bytes(), nil
}
