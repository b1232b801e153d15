package weather

import "time"

// Clock supplies the current instant. It exists so time-dependent output can
// be pinned in tests; the zero value of dependents should use time.Now.
type Clock func() time.Time

// localTimeLayout renders a 12-hour clock with AM/PM, e.g. "07:45 PM".
const localTimeLayout = "03:04 PM"

// LocalTime formats the current instant shifted by a UTC offset in seconds.
func LocalTime(clock Clock, offsetSeconds int) string {
	if clock == nil {
		clock = time.Now
	}
	shifted := clock().UTC().Add(time.Duration(offsetSeconds) * time.Second)
	return shifted.Format(localTimeLayout)
}
