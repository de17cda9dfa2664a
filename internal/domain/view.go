package domain

// HeatOptions configures heat-layer rendering.
type HeatOptions struct {
	Radius  int `json:"radius"`
	Blur    int `json:"blur"`
	MaxZoom int `json:"max_zoom"`
}

// Overlay names.
const (
	OverlayHeatmap  = "Overdose Heatmap"
	OverlayMarkers  = "Overdose Case Markers"
	OverlayStations = "EMT Resources"
)

// OverlayDefault describes an overlay and whether it starts visible.
type OverlayDefault struct {
	Name    string `json:"name"`
	Key     string `json:"key"`
	Visible bool   `json:"visible"`
}

// ViewDefaults is the initial map view a rendering surface should present.
// It carries no state; visibility toggles belong to the client.
type ViewDefaults struct {
	Center     GeoPoint         `json:"center"`
	Zoom       int              `json:"zoom"`
	Heat       HeatOptions      `json:"heat"`
	Overlays   []OverlayDefault `json:"overlays"`
	BaseLayers []string         `json:"base_layers"`
}

// DefaultView returns the San Francisco view used by the map.
func DefaultView() ViewDefaults {
	return ViewDefaults{
		Center: GeoPoint{Lat: 37.7749, Lon: -122.4194},
		Zoom:   13,
		Heat:   HeatOptions{Radius: 15, Blur: 15, MaxZoom: 17},
		Overlays: []OverlayDefault{
			{Name: OverlayHeatmap, Key: "heat", Visible: true},
			{Name: OverlayMarkers, Key: "markers", Visible: false},
			{Name: OverlayStations, Key: "stations", Visible: false},
		},
		BaseLayers: []string{"Minimalist Light View", "GPS Map"},
	}
}
