package domain

// Routes a resolved session lands on.
const (
	RouteLogin = "LOGIN"
	RouteHome  = "HOME"
)

const (
	NotificationFavorited = "FAVORITED"
)

const (
	// MinPasswordLength matches what the mobile sign-up form enforces.
	MinPasswordLength = 6
	MaxPhotoBytes     = 5 << 20
)

// Self-location sources reported on nearby responses and metrics.
const (
	SelfLocationQuery  = "query"
	SelfLocationStored = "stored"
	SelfLocationAbsent = "absent"
)
