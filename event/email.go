package event

import (
	"regexp"
	"strings"
)

// https://www.regular-expressions.info/email.html explains the following regexp matches 99.99% email addresses in use.
var emailRE = regexp.MustCompile("\\A[a-z0-9!#$%&'*+/=?^_`{|}~-]+(?:\\.[a-z0-9!#$%&'*+/=?^_`{|}~-]+)*@(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\\z")

// isEmail reports whether an identifier is an email address. Some sources
// use the address as the userId.
func isEmail(id string) bool {
	return emailRE.MatchString(strings.ToLower(id))
}
