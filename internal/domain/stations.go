package domain

// stationDirectory is the San Francisco Fire Department station list, in station-number order.
var stationDirectory = [...]EmsStation{
	{Name: "Station 1", Lat: 37.778474, Lon: -122.404469, Address: "935 Folsom at 5th Street"},
	{Name: "Station 2", Lat: 37.796765, Lon: -122.409203, Address: "1340 Powell Street at Broadway"},
	{Name: "Station 3", Lat: 37.786482, Lon: -122.418036, Address: "1067 Post Street at Polk Street"},
	{Name: "Station 4", Lat: 37.770982, Lon: -122.387476, Address: "449 Mission Rock at 3rd Street"},
	{Name: "Station 5", Lat: 37.781207, Lon: -122.432071, Address: "1301 Turk Street at Webster Street"},
	{Name: "Station 6", Lat: 37.764245, Lon: -122.431157, Address: "135 Sanchez Street at Henry Street"},
	{Name: "Station 7", Lat: 37.758521, Lon: -122.413358, Address: "2300 Folsom Street at 19th Street"},
	{Name: "Station 8", Lat: 37.776320, Lon: -122.399187, Address: "36 Bluxome Street at 4th Street"},
	{Name: "Station 9", Lat: 37.743020, Lon: -122.397716, Address: "2245 Jerrold Avenue at Upton Street"},
	{Name: "Station 10", Lat: 37.784805, Lon: -122.442943, Address: "655 Presidio Avenue at Bush Street"},
	{Name: "Station 11", Lat: 37.748946, Lon: -122.423997, Address: "3880 26th Street at Church Street"},
	{Name: "Station 12", Lat: 37.765842, Lon: -122.448068, Address: "1145 Stanyan Street at Grattan Street"},
	{Name: "Station 13", Lat: 37.796866, Lon: -122.402876, Address: "530 Sansome Street at Washington Street"},
	{Name: "Station 14", Lat: 37.780917, Lon: -122.489178, Address: "551 26th Avenue at Geary Boulevard"},
	{Name: "Station 15", Lat: 37.723300, Lon: -122.451862, Address: "1000 Ocean Avenue at Phelan Avenue"},
	{Name: "Station 16", Lat: 37.798152, Lon: -122.436696, Address: "2251 Greenwich Street at Fillmore Street"},
	{Name: "Station 17", Lat: 37.730323, Lon: -122.382393, Address: "1295 Shafter Avenue at Ingalls Street"},
	{Name: "Station 18", Lat: 37.753340, Lon: -122.494293, Address: "1935 32nd Avenue at Ortega Street"},
	{Name: "Station 19", Lat: 37.731812, Lon: -122.474348, Address: "390 Buckingham Way at Winston Street"},
	{Name: "Station 20", Lat: 37.751413, Lon: -122.456604, Address: "285 Olympia Way at Clarendon Avenue"},
	{Name: "Station 21", Lat: 37.775887, Lon: -122.438924, Address: "1443 Grove Street at Broderick Street"},
	{Name: "Station 22", Lat: 37.763796, Lon: -122.473696, Address: "1290 16th Avenue at Irving Street"},
	{Name: "Station 23", Lat: 37.761470, Lon: -122.504970, Address: "1348 45th Avenue at Judah Street"},
	{Name: "Station 24", Lat: 37.746963, Lon: -122.436534, Address: "100 Hoffman Avenue at Alvarado Street"},
	{Name: "Station 25", Lat: 37.749877, Lon: -122.387622, Address: "3305 3rd Street at Cargo Way"},
	{Name: "Station 26", Lat: 37.734090, Lon: -122.442605, Address: "80 Digby Street at Addison Street"},
	{Name: "Station 28", Lat: 37.802678, Lon: -122.410359, Address: "1814 Stockton Street at Greenwich Street"},
	{Name: "Station 29", Lat: 37.765041, Lon: -122.403687, Address: "299 Vermont Street at 16th Street"},
	{Name: "Station 31", Lat: 37.781694, Lon: -122.469178, Address: "441 12th Avenue at Geary Boulevard"},
	{Name: "Station 32", Lat: 37.734744, Lon: -122.422515, Address: "194 Park Street at Holly Park Circle"},
	{Name: "Station 33", Lat: 37.714552, Lon: -122.451993, Address: "8 Capitol Avenue at Sagamore Street"},
	{Name: "Station 34", Lat: 37.780296, Lon: -122.507229, Address: "499 41st Avenue at Geary Boulevard"},
	{Name: "Station 35", Lat: 37.789312, Lon: -122.387927, Address: "Pier 22½, The Embarcadero at Harrison Street"},
	{Name: "Station 36", Lat: 37.775307, Lon: -122.423585, Address: "109 Oak Street at Franklin Street"},
	{Name: "Station 37", Lat: 37.757580, Lon: -122.398423, Address: "798 Wisconsin Street at 22nd Street"},
	{Name: "Station 38", Lat: 37.789734, Lon: -122.432019, Address: "2150 California Street at Laguna Street"},
	{Name: "Station 39", Lat: 37.739379, Lon: -122.453181, Address: "1091 Portola Drive at Miraloma Drive"},
	{Name: "Station 40", Lat: 37.743360, Lon: -122.476137, Address: "2155 18th Avenue at Rivera Street"},
	{Name: "Station 41", Lat: 37.794691, Lon: -122.416425, Address: "1325 Leavenworth Street at Jackson Street"},
	{Name: "Station 42", Lat: 37.726138, Lon: -122.402685, Address: "2430 San Bruno Avenue at Silver Avenue"},
	{Name: "Station 43", Lat: 37.714555, Lon: -122.431245, Address: "720 Moscow Street at France Avenue"},
	{Name: "Station 44", Lat: 37.719332, Lon: -122.427393, Address: "1298 Girard Street at Wilde Avenue"},
	{Name: "Station 48", Lat: 37.823103, Lon: -122.370754, Address: "800 Avenue I at 10th Street, Treasure Island"},
	{Name: "Station 49", Lat: 37.742800, Lon: -122.397300, Address: "2241 Jerrold Avenue at Upton Street"},
	{Name: "Station 51", Lat: 37.802897, Lon: -122.459859, Address: "218 Lincoln Blvd at Keyes Avenue"},
}

// EmsStation is a fixed emergency-medical-service facility.
type EmsStation struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address"`
}

// Position returns the station location as a GeoPoint.
func (s EmsStation) Position() GeoPoint {
	return GeoPoint{Lat: s.Lat, Lon: s.Lon}
}

// Stations returns a copy of the station directory. Callers may modify the
// returned slice without affecting later calls.
func Stations() []EmsStation {
	out := make([]EmsStation, len(stationDirectory))
	copy(out, stationDirectory[:])
	return out
}

// StationCount is the number of stations in the directory.
func StationCount() int { return len(stationDirectory) }
