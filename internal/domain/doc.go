// Package domain models the San Francisco overdose-death dataset and the EMS
// station directory shown alongside it.
//
// # Data Source
//
// Cases come from a static CSV export (od_deaths_detailed_2020_2021.csv). The
// file has a header row; the columns this package reads are:
//
//	LAT, LON            decimal degrees as text, e.g. "37.7749", "-122.4194"
//	Involves_fentanyl   "TRUE" / "FALSE" in any letter case
//	COD Variant         cause-of-death text, e.g. "Acute Intoxication"
//	Race, Age, Gender   free text, displayed verbatim
//	Date                free text, format not normalized
//
// Any other column is ignored. A missing column reads as an empty string.
//
// # Coordinate Parsing
//
// LAT and LON are read the way a browser's parseFloat reads them: leading
// whitespace is skipped and the longest numeric prefix wins, so "37.77 N"
// parses as 37.77. A field with no numeric prefix ("", "N/A") drops the whole
// row from every output collection. Drops are silent; only the aggregate
// count surfaces in [TransformStats].
//
// # Derived Collections
//
// One pass over the rows yields two collections, returned together in [MapData]:
//
//	Heat    one [GeoPoint] per coordinate-valid, fentanyl-positive row
//	Markers one [CaseMarker] per coordinate-valid row admitted by the [MarkerPolicy]
//
// Two deployments of the original map disagreed on marker scope, so the policy
// is configurable: [AllCases] (default) or [FentanylOnly].
//
// # Station Directory
//
// [Stations] returns a fixed, ordered list of San Francisco Fire Department
// stations. It never depends on the CSV and is unaffected by load failures.
package domain
