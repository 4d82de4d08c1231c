package format

// StringOr returns *s, or fallback when s is nil.
func StringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
