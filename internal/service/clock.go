package service

import "time"

var now = time.Now

func timeUntil(t time.Time) time.Duration {
	d := t.Sub(now())
	if d < 0 {
		return 0
	}
	return d
}
