package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRX = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

type Validator struct {
	Errors []string `json:",omitempty"`
}

func (v Validator) HasErrors() bool {
	return len(v.Errors) != 0
}

func (v *Validator) AddError(message string) {
	v.Errors = append(v.Errors, message)
}

func (v *Validator) Check(ok bool, message string) {
	if !ok {
		v.AddError(message)
	}
}

// Error joins the collected messages so a Validator can be returned as an error.
func (v Validator) Error() string {
	return strings.Join(v.Errors, "; ")
}

func NotBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

func MinRunes(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}

func IsEmail(s string) bool {
	return len(s) <= 254 && emailRX.MatchString(s)
}
