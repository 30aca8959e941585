package syndicate

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DefaultExtension is used for both RSS and Atom output so existing object keys stay valid
const DefaultExtension = ".xml"

// DeriveFilename returns the stable, hard to guess object name of a feed:
// hex(sha256(accountID + handle + concat(lists) + salt)) + ext.
func DeriveFilename(accountID, handle string, lists []string, salt, ext string) string {
	h := sha256.New()
	h.Write([]byte(accountID))
	h.Write([]byte(handle))
	h.Write([]byte(strings.Join(lists, "")))
	h.Write([]byte(salt))
	return hex.EncodeToString(h.Sum(nil)) + ext
}
