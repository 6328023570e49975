package utils

import (
	"regexp"
	"strings"
)

var (
	internationalPhone = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)
	localPhone         = regexp.MustCompile(`^0\d{8,10}$`)
	datePattern        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ValidatePhone accepts international numbers (optional + then 7 to 15
// digits) and local numbers with a leading 0, such as 0612345678. Spaces,
// dashes, dots and parentheses are ignored.
func ValidatePhone(phone string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "").Replace(phone)
	return internationalPhone.MatchString(cleaned) || localPhone.MatchString(cleaned)
}

// LooksLikeDate reports whether s has the YYYY-MM-DD shape.
func LooksLikeDate(s string) bool {
	return datePattern.MatchString(s)
}
