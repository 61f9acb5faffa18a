package api

import (
	"io"
	"net/http"
	"os"

	"github.com/AlexxIT/go2ir/internal/app"
	"github.com/AlexxIT/go2ir/pkg/yaml"
)

func configHandler(w http.ResponseWriter, r *http.Request) {
	if app.ConfigPath == "" {
		http.Error(w, "", http.StatusGone)
		return
	}

	switch r.Method {
	case "GET":
		data, err := app.ReadConfig()
		if err != nil {
			http.Error(w, "", http.StatusNotFound)
			return
		}
		// https://www.ietf.org/archive/id/draft-ietf-httpapi-yaml-mediatypes-00.html
		Response(w, data, "application/yaml")

	case "POST":
		data, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		// validate config
		var tmp map[string]any
		if err = yaml.Unmarshal(data, &tmp); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err = os.WriteFile(app.ConfigPath, data, 0644); err != nil {
			Error(w, err)
			return
		}

	default:
		http.Error(w, "", http.StatusMethodNotAllowed)
	}
}
