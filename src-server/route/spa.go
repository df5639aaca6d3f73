package route

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"teamcal/src-server/utils"
)

// SPA serves the exported web client, falling back to index.html for
// client-side routes like /calendar or /projects.
func SPA(muxer *http.ServeMux, as *utils.AppState) {
	dir := as.Config.GetStaticWebClientDir()
	if dir == "" {
		return
	}
	files := http.FS(os.DirFS(dir))
	index, err := files.Open("index.html")
	if err != nil {
		slog.Error("Can't open index.html", "dir", dir, "err", err)
		return
	}
	index.Close()

	serve := func(w http.ResponseWriter, r *http.Request, name string) bool {
		file, err := files.Open(name)
		if err != nil {
			return false
		}
		defer file.Close()
		stat, err := file.Stat()
		if err != nil || stat.IsDir() {
			return false
		}
		http.ServeContent(w, r, stat.Name(), stat.ModTime(), file)
		return true
	}

	muxer.HandleFunc("GET /{filepath...}", func(w http.ResponseWriter, r *http.Request) {
		filepath := path.Clean("/" + r.PathValue("filepath"))[1:]
		if filepath == "" {
			filepath = "index.html"
		}
		for _, candidate := range []string{filepath, filepath + "/index.html", filepath + ".html"} {
			if serve(w, r, candidate) {
				return
			}
		}
		serve(w, r, "index.html")
	})
}
