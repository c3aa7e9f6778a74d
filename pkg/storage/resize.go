package storage

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// MaxAvatarDim is the longest edge stored for profile images.
const MaxAvatarDim = 512

var ErrUnsupportedImage = errors.New("storage: unsupported image format")

// NormalizeAvatar decodes a JPEG or PNG upload, downscales it so the
// longest edge is at most MaxAvatarDim, and re-encodes as JPEG. Small
// images pass through the re-encode unscaled so stored avatars are
// uniform.
func NormalizeAvatar(data []byte) ([]byte, string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", ErrUnsupportedImage
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > MaxAvatarDim || h > MaxAvatarDim {
		scale := float64(MaxAvatarDim) / float64(w)
		if h > w {
			scale = float64(MaxAvatarDim) / float64(h)
		}
		dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 85}); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/jpeg", nil
}
