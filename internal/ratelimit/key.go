package ratelimit

// UserKey builds the limiter key for a user-scoped burst limit.
func UserKey(userID string) string {
	if userID == "" {
		return ""
	}
	return "u:" + userID
}
