package http

import (
	"net/http"
	"strconv"
)

// GET /events?after=&limit=
func EventsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs := r.URL.Query()
		after, err := strconv.ParseInt(qs.Get("after"), 10, 64)
		if qs.Get("after") != "" && (err != nil || after < 0) {
			http.Error(w, "after must be a non-negative offset", http.StatusBadRequest)
			return
		}
		limit, _ := strconv.Atoi(qs.Get("limit"))
		if limit > 1000 {
			limit = 1000
		}
		out, err := d.Feed.Since(r.Context(), after, limit)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
