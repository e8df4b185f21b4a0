package weather

import "time"

// CityTime converts a UTC unix timestamp to the city's local time using a
// fixed offset in seconds.
func CityTime(tsUTC int64, offsetSeconds int) time.Time {
	return time.Unix(tsUTC, 0).In(time.FixedZone("", offsetSeconds))
}

// FormatClock renders the city-local wall clock as HH:MM. A nil timestamp
// renders as "N/A".
func FormatClock(ts *int64, offsetSeconds int) string {
	if ts == nil {
		return notAvailable
	}
	return CityTime(*ts, offsetSeconds).Format("15:04")
}
