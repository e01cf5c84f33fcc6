package leads

import "time"

func SetClock(r *Repository, now func() time.Time) { r.now = now }
