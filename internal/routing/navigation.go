package routing

import (
	"net/url"
	"strconv"
	"strings"

	"dairyDispatch/models"
)

const directionsURL = "https://www.google.com/maps/dir/"

// NavigationURL opens the route in the device's map application: origin,
// intermediate stops as waypoints, the last stop as destination.
func NavigationURL(origin models.Point, stops []models.Point) string {
	q := url.Values{}
	q.Set("api", "1")
	q.Set("travelmode", "driving")
	q.Set("origin", latLng(origin))
	if len(stops) == 0 {
		q.Set("destination", latLng(origin))
		return directionsURL + "?" + q.Encode()
	}
	q.Set("destination", latLng(stops[len(stops)-1]))
	if len(stops) > 1 {
		wps := make([]string, 0, len(stops)-1)
		for _, s := range stops[:len(stops)-1] {
			wps = append(wps, latLng(s))
		}
		q.Set("waypoints", strings.Join(wps, "|"))
	}
	return directionsURL + "?" + q.Encode()
}

func latLng(p models.Point) string {
	return strconv.FormatFloat(p.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lng, 'f', 6, 64)
}
