package captcha

import (
	"crypto/rand"
	"encoding/binary"
	"strings"
)

// DefaultTokenLength is the token length the portal's own form generates.
const DefaultTokenLength = 52

const tokenAlphabet = "0123456789ABCDEFGHIJKLMN"

// GenerateToken returns a random token over the portal's 24 character
// alphabet. Each 8 byte draw is spent base-24, least significant digit first.
func GenerateToken(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}

	var out strings.Builder
	out.Grow(length)
	buffer := make([]byte, 8)
	base := uint64(len(tokenAlphabet))
	for out.Len() < length {
		_, err := rand.Read(buffer)
		if err != nil {
			return "", err
		}
		value := binary.LittleEndian.Uint64(buffer)
		for value > 0 && out.Len() < length {
			out.WriteByte(tokenAlphabet[value%base])
			value /= base
		}
	}
	return out.String(), nil
}
