package static

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const indexPage = "/index.html"

// FileServer returns a handler that serves the files under root from disk.
// Existing files are returned with their content type, missing paths get a 404
// and directories are listed the way http.FileServer lists them.
func FileServer(root string) http.Handler {
	files := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// http.FileServer answers .../index.html with a redirect to the
		// directory; serve the page in place instead.
		upath := path.Clean("/" + r.URL.Path)
		if strings.HasSuffix(upath, indexPage) {
			if !isFile(filepath.Join(root, filepath.FromSlash(upath))) {
				http.NotFound(w, r)
				return
			}
			r2 := new(http.Request)
			*r2 = *r
			u := *r.URL
			u.Path = strings.TrimSuffix(upath, "index.html")
			u.RawPath = ""
			r2.URL = &u
			r = r2
		}

		files.ServeHTTP(w, r)
	})
}

func isFile(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.Mode().IsRegular()
}
