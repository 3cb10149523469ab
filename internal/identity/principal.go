// Package identity implements the identity provider adapter: the textual
// principal encoding, self-authenticating principals derived from public keys,
// and client certificates that carry a principal as their Common Name.
package identity

import (
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/atinyakov/GophMarket/internal/models"
)

const (
	maxBlobLen        = 29
	checksumLen       = 4
	groupLen          = 5
	selfAuthenticated = 0x02
	anonymousTag      = 0x04
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Encode returns the textual principal for a raw principal blob.
func Encode(blob []byte) models.Principal {
	buf := make([]byte, checksumLen+len(blob))
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE(blob))
	copy(buf[checksumLen:], blob)

	raw := strings.ToLower(encoding.EncodeToString(buf))
	var sb strings.Builder
	for i := 0; i < len(raw); i += groupLen {
		if i > 0 {
			sb.WriteByte('-')
		}
		sb.WriteString(raw[i:min(i+groupLen, len(raw))])
	}
	return models.Principal(sb.String())
}

// Decode returns the raw blob of a textual principal.
// Only the canonical form produced by Encode is accepted.
func Decode(text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty principal", models.ErrInvalidIdentity)
	}
	buf, err := encoding.DecodeString(strings.ToUpper(strings.ReplaceAll(text, "-", "")))
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not base32", models.ErrInvalidIdentity, text)
	}
	if len(buf) < checksumLen || len(buf)-checksumLen > maxBlobLen {
		return nil, fmt.Errorf("%w: %q has invalid length", models.ErrInvalidIdentity, text)
	}
	blob := buf[checksumLen:]
	if binary.BigEndian.Uint32(buf) != crc32.ChecksumIEEE(blob) {
		return nil, fmt.Errorf("%w: %q has a bad checksum", models.ErrInvalidIdentity, text)
	}
	if string(Encode(blob)) != text {
		return nil, fmt.Errorf("%w: %q is not in canonical form", models.ErrInvalidIdentity, text)
	}
	return blob, nil
}

// Parse validates principal text.
func Parse(text string) (models.Principal, error) {
	if _, err := Decode(text); err != nil {
		return "", err
	}
	return models.Principal(text), nil
}

// ParseUser validates principal text and rejects the anonymous principal,
// which can never hold a role.
func ParseUser(text string) (models.Principal, error) {
	p, err := Parse(strings.TrimSpace(text))
	if err != nil {
		return "", err
	}
	if p.IsAnonymous() {
		return "", fmt.Errorf("%w: anonymous principal", models.ErrInvalidIdentity)
	}
	return p, nil
}

// Anonymous returns the principal of callers without an identity.
func Anonymous() models.Principal {
	return Encode([]byte{anonymousTag})
}

// SelfAuthenticating derives the principal owned by a public key given in
// DER-encoded SubjectPublicKeyInfo form.
func SelfAuthenticating(publicKeyDER []byte) models.Principal {
	sum := sha256.Sum224(publicKeyDER)
	blob := append(sum[:], selfAuthenticated)
	return Encode(blob)
}
