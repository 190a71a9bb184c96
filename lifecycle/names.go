package lifecycle

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const nameTimeLayout = "20060102T150405.000"

// UniqueName builds a file name from a prefix, a UTC millisecond timestamp
// and a random UUID, so names never collide across concurrent jobs even
// within the same millisecond. ext may be given with or without a dot.
func UniqueName(prefix, ext string) string {
	if prefix == "" {
		prefix = "scribe"
	}
	ts := strings.Replace(time.Now().UTC().Format(nameTimeLayout), ".", "", 1)
	name := prefix + "-" + ts + "-" + uuid.NewString()
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return name + ext
}
