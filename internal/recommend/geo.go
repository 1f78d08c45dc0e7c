package recommend

import (
	"math"

	"github.com/sells-group/comps-cli/internal/model"
)

const earthRadiusM = 6371000.0

// HaversineM returns the great-circle distance in meters between two
// lat/lon points.
func HaversineM(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DistanceM returns the distance from the subject to a candidate, or nil
// when either side lacks coordinates.
func DistanceM(subject, cand model.PropertyRecord) *float64 {
	if subject.Lat == nil || subject.Lon == nil || cand.Lat == nil || cand.Lon == nil {
		return nil
	}
	return model.Float64(HaversineM(*subject.Lat, *subject.Lon, *cand.Lat, *cand.Lon))
}
