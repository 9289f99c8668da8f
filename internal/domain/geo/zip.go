package geo

// ZipTable resolves US zip codes to coordinates. It is built once at startup
// and only read afterwards.
type ZipTable struct {
	points map[string]Point
}

// DefaultZipCodes is the built-in zip reference table.
func DefaultZipCodes() map[string]Point {
	return map[string]Point{
		"94103": {Lat: 37.7763, Lon: -122.4167},
		"94105": {Lat: 37.7892, Lon: -122.3960},
		"94102": {Lat: 37.7784, Lon: -122.4175},
		"94901": {Lat: 37.9735, Lon: -122.5311},
		"85004": {Lat: 33.4510, Lon: -112.0730},
		"30303": {Lat: 33.7537, Lon: -84.3884},
		"95113": {Lat: 37.3348, Lon: -121.8906},
	}
}

// NewZipTable copies the built-in table and overlays extra entries.
func NewZipTable(extra map[string]Point) *ZipTable {
	points := DefaultZipCodes()
	for zip, p := range extra {
		points[zip] = p
	}
	return &ZipTable{points: points}
}

// Lookup returns the coordinates for zip. Unknown zips report false.
func (t *ZipTable) Lookup(zip string) (Point, bool) {
	if t == nil || zip == "" {
		return Point{}, false
	}
	p, ok := t.points[zip]
	return p, ok
}

// Len returns the number of known zip codes.
func (t *ZipTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.points)
}
