package user

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

// avatarSize is the edge length every stored avatar is normalized to.
const avatarSize = 300

// allowedAvatarExtensions is checked against the uploaded filename only;
// the file content is not sniffed. The match is case-sensitive.
var allowedAvatarExtensions = []string{".jpg", ".jpeg", ".png"}

// validAvatarFilename reports whether the uploaded filename carries an
// accepted image extension.
func validAvatarFilename(name string) bool {
	for _, ext := range allowedAvatarExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// processAvatar decodes the uploaded bytes, crops and scales them to a
// 300x300 square, and re-encodes the result as PNG. The stored avatar is
// always the processed image, never the raw upload.
func processAvatar(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode avatar image: %w", err)
	}

	resized := imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode avatar image: %w", err)
	}

	return buf.Bytes(), nil
}
