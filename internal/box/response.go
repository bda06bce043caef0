package box

import (
	"crypto/md5"
	"encoding/hex"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// ComputeResponse answers a login challenge.
//
// The box hashes "<challenge>-<password>" as UTF-16LE, so the combined
// string must fit in ISO-8859-1. The result has the form
// "<challenge>-<32 lower-case hex digits>".
func ComputeResponse(challenge, password string) (string, error) {
	plain := challenge + "-" + password

	if _, err := charmap.ISO8859_1.NewEncoder().String(plain); err != nil {
		return "", NewCharsetError(err)
	}

	encoded, err := utf16le.NewEncoder().Bytes([]byte(plain))
	if err != nil {
		return "", NewCharsetError(err)
	}

	sum := md5.Sum(encoded)
	return challenge + "-" + hex.EncodeToString(sum[:]), nil
}
