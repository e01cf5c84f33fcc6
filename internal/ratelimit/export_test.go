package ratelimit

import "time"

func SetClock(l *RedisLimiter, now func() time.Time) { l.now = now }
