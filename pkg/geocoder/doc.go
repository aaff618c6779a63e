// Package geocoder resolves street addresses to coordinates via the Mapbox
// forward geocoding API.
package geocoder
