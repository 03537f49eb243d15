package mid

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// Gzip compresses responses of at least minSize bytes for clients that
// accept it. Already-compressed content types such as PNG pass through.
func Gzip(minSize int) Middleware {
	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(minSize))
	if err != nil {
		return func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) }
	}
	return func(next http.Handler) http.Handler { return wrap(next) }
}
