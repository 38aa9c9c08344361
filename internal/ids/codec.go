package ids

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/blowfish"
)

var ErrInvalidToken = errors.New("invalid encoded id")

// pad is prepended to the decimal id until its length is a multiple of the
// cipher block size. At least one pad byte is always added.
const pad = '!'

// Codec turns database ids into opaque hex tokens by encrypting their
// decimal form with Blowfish in ECB mode.
type Codec struct {
	cipher *blowfish.Cipher
}

// New builds a Codec from the id secret. Blowfish accepts keys of 1 to 56
// bytes.
func New(secret string) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("id secret is required")
	}
	c, err := blowfish.NewCipher([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("id cipher: %w", err)
	}
	return &Codec{cipher: c}, nil
}

func (c *Codec) Encode(id int64) string {
	s := strconv.FormatInt(id, 10)
	n := blowfish.BlockSize - len(s)%blowfish.BlockSize
	plain := append(bytes.Repeat([]byte{pad}, n), s...)

	out := make([]byte, len(plain))
	for i := 0; i < len(plain); i += blowfish.BlockSize {
		c.cipher.Encrypt(out[i:i+blowfish.BlockSize], plain[i:i+blowfish.BlockSize])
	}
	return hex.EncodeToString(out)
}

func (c *Codec) Decode(token string) (int64, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(token))
	if err != nil || len(raw) == 0 || len(raw)%blowfish.BlockSize != 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}

	plain := make([]byte, len(raw))
	for i := 0; i < len(raw); i += blowfish.BlockSize {
		c.cipher.Decrypt(plain[i:i+blowfish.BlockSize], raw[i:i+blowfish.BlockSize])
	}

	id, err := strconv.ParseInt(string(bytes.TrimLeft(plain, string(pad))), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	return id, nil
}
