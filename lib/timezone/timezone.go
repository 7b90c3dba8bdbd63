package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Jakarta")
	if err != nil {
		panic(err)
	}
}

// force timezone to be WIB since the portal renders every timestamp in
// Jakarta local time while deployments may end up anywhere
func Now() time.Time {
	return time.Now().In(Location)
}
