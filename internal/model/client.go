package model

// ClientInfo identifies the caller of an operation for auditing and rate limiting.
type ClientInfo struct {
	IP        string
	UserAgent string
}
