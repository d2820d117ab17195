package auth

import "time"

// DeviceGrant holds the response to a device authorization request: the code
// to show the user and the parameters that govern the polling phase.
type DeviceGrant struct {
	DeviceCode      string // opaque, sent back on every poll, never shown to the user
	UserCode        string // short code the user enters on the verification page
	VerificationURI string
	ExpiresIn       int // seconds until the device code expires
	Interval        int // polling interval in seconds, dictated by the provider

	// ReceivedAt is the instant the grant was parsed, stamped by RequestCode.
	// The poll deadline is ReceivedAt + ExpiresIn. time.Now carries a
	// monotonic reading, so the deadline survives wall-clock adjustments.
	ReceivedAt time.Time
}

// AccessToken is the bearer credential issued when the user completes
// authorization. It lives only in memory for the rest of the run.
type AccessToken struct {
	Token string
	Type  string
}
