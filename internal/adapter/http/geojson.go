package http

import (
	"net/http"

	"github.com/couchcryptid/narcan-map/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoJSON positions are [lon, lat], the reverse of the heat layer's [lat, lon].
func point(p domain.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

func markerFeatures(markers []domain.CaseMarker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		f := geojson.NewFeature(point(m.Position))
		f.Properties["cod"] = m.COD
		f.Properties["race"] = m.Race
		f.Properties["age"] = m.Age
		f.Properties["gender"] = m.Gender
		f.Properties["date"] = m.Date
		f.Properties["fentanyl"] = m.Fentanyl
		f.Properties["popup"] = m.PopupLines()
		fc.Append(f)
	}
	return fc
}

func stationFeatures(stations []domain.EmsStation) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, st := range stations {
		f := geojson.NewFeature(point(st.Position()))
		f.Properties["name"] = st.Name
		f.Properties["address"] = st.Address
		f.Properties["popup"] = []string{st.Name, st.Address}
		fc.Append(f)
	}
	return fc
}

func (s *Server) writeGeoJSON(w http.ResponseWriter, fc *geojson.FeatureCollection) {
	data, err := fc.MarshalJSON()
	if err != nil {
		s.logger.Error("marshal geojson", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("write response", "error", err)
	}
}
