package utils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThumbnailJPEG_SquaresAndScales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 300, 200))
	for x := 0; x < 300; x++ {
		for y := 0; y < 200; y++ {
			src.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := ThumbnailJPEG(&buf, AvatarSize)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, AvatarSize, img.Bounds().Dx())
	assert.Equal(t, AvatarSize, img.Bounds().Dy())
}

func TestThumbnailJPEG_RejectsGarbage(t *testing.T) {
	_, err := ThumbnailJPEG(bytes.NewReader([]byte("not an image")), AvatarSize)
	assert.Error(t, err)
}

func TestDownloadAvatar_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := DownloadAvatar(context.Background(), srv.Client(), srv.URL, AvatarSize)
	assert.ErrorContains(t, err, "status 404")
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5s", FormatUptime(5*time.Second))
	assert.Equal(t, "2m 3s", FormatUptime(2*time.Minute+3*time.Second))
	assert.Equal(t, "1h 0m 0s", FormatUptime(time.Hour))
	assert.Equal(t, "1d 1h 0m 0s", FormatUptime(25*time.Hour))
}

func TestHealthTracker(t *testing.T) {
	h := NewHealthTracker()
	assert.Equal(t, HealthStarting, h.GetHealth().Status)

	h.SetHealthStatus(HealthOK, "Service is running normally")
	got := h.GetHealth()
	assert.Equal(t, HealthOK, got.Status)
	assert.Equal(t, "Service is running normally", got.Message)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadGateway, "nope")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"nope"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
