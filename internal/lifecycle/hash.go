package lifecycle

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"corpcheck/internal/lifecycle/models"
)

// HashIdentity derives the content-address of a validation request. Manifest
// requests hash the (isProduction, packageJSON, packageLock, yarnLock) tuple,
// registry requests hash (name, version). Fields are length-prefixed so
// adjacent values cannot collide. The algorithm itself is not load-bearing,
// only its determinism across calls with identical input.
func HashIdentity(identity models.PackageIdentity) string {
	h := sha256.New()
	if identity.FromManifest() {
		writeField(h, strconv.FormatBool(identity.IsProduction))
		writeField(h, identity.PackageJSON)
		writeField(h, identity.PackageLock)
		writeField(h, identity.YarnLock)
	} else {
		writeField(h, identity.PackageName)
		writeField(h, identity.Version)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h interface{ Write([]byte) (int, error) }, field string) {
	_, _ = h.Write([]byte(strconv.Itoa(len(field))))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(field))
}
