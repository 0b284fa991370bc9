// authenticationhandler/validation.go
package authenticationhandler

import "regexp"

var (
	accessKeyIDRegex = regexp.MustCompile(`^[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{12}$`)
	lowerCaseRegex   = regexp.MustCompile(`[a-z]`)
	upperCaseRegex   = regexp.MustCompile(`[A-Z]`)
	digitRegex       = regexp.MustCompile(`\d`)
)

// IsValidAccessKeyID checks that the access key ID has the UUID shape EnvHub
// issues. When the check fails the second return value carries a message
// suitable for surfacing to the operator.
func IsValidAccessKeyID(accessKeyID string) (bool, string) {
	if accessKeyID == "" {
		return false, "access key ID is empty"
	}
	if !accessKeyIDRegex.MatchString(accessKeyID) {
		return false, "access key ID is not a valid UUID"
	}
	return true, ""
}

// IsValidAccessKeySecret checks that the access key secret meets the minimum
// strength EnvHub enforces at issuance: at least 16 characters including
// lower case, upper case and numeric characters.
func IsValidAccessKeySecret(accessKeySecret string) (bool, string) {
	if len(accessKeySecret) < 16 {
		return false, "access key secret must be at least 16 characters long"
	}
	if !lowerCaseRegex.MatchString(accessKeySecret) || !upperCaseRegex.MatchString(accessKeySecret) || !digitRegex.MatchString(accessKeySecret) {
		return false, "access key secret must contain lower case, upper case and numeric characters"
	}
	return true, ""
}
