package media

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewFilename builds "{prefix}{unix}_{8 hex}.{ext}". Uniqueness relies on the
// random suffix; there is no locking across requests.
func NewFilename(prefix, ext string, now time.Time) string {
	u := uuid.New()
	return fmt.Sprintf("%s%d_%s.%s", prefix, now.Unix(), hex.EncodeToString(u[:4]), strings.ToLower(ext))
}

// Extension returns the lower-cased extension without the dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// BaseName strips the extension from name.
func BaseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// VariantFilename is "{base}_{variant}.jpg".
func VariantFilename(sourceName, variant string) string {
	return BaseName(sourceName) + "_" + variant + OutputExt
}
