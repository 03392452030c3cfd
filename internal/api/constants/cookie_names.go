package constants

// Cookie names used in the application
const (
	CookieCSRF = "csrf_token" // double-submit token, readable by the page script

	CookiePathRoot = "/"

	CookieDuration24h = 86400 // 24 hours
)
