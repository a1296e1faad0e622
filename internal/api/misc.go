package api

import "net/http"

type exampleResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// handleExample is a fixed demo payload for client wiring checks.
func (s *HTTPServer) handleExample(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, exampleResponse{
		ID:          "1",
		Name:        "Example",
		Description: "Example response from the pethotel API",
	})
}

func (s *HTTPServer) handleLocality(w http.ResponseWriter, r *http.Request) {
	lat, err := queryFloat(r, "lat")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lon, err := queryFloat(r, "lon")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeError(w, http.StatusBadRequest, "coordinates out of range")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"locality": s.svc.Geo.Locality(r.Context(), lat, lon)})
}
