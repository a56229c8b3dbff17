package utils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// AvatarSize is the edge length of the square profile thumbnails.
const AvatarSize = 96

// maxAvatarBytes caps how much of a remote photo we are willing to read.
const maxAvatarBytes = 5 << 20

// DownloadAvatar fetches a profile photo and returns it as a square JPEG
// thumbnail of size x size pixels.
func DownloadAvatar(ctx context.Context, client *http.Client, url string, size int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}
	return ThumbnailJPEG(io.LimitReader(resp.Body, maxAvatarBytes), size)
}

// ThumbnailJPEG decodes any registered format (GIF, JPEG, PNG, WebP),
// center-crops it to a square and scales it to size x size.
func ThumbnailJPEG(r io.Reader, size int) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	side := min(bounds.Dx(), bounds.Dy())
	if side == 0 {
		return nil, fmt.Errorf("failed to decode image: empty bounds")
	}
	x0 := bounds.Min.X + (bounds.Dx()-side)/2
	y0 := bounds.Min.Y + (bounds.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, crop, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("failed to encode as jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
