// headers/redact/redact.go
package redact

// RedactSensitiveHeaderData redacts sensitive data based on the hideSensitiveData flag.
func RedactSensitiveHeaderData(hideSensitiveData bool, key, value string) string {
	if hideSensitiveData {
		// Define sensitive data keys that should be redacted.
		sensitiveKeys := map[string]bool{
			"AccessToken":   true,
			"Authorization": true,
		}

		if _, found := sensitiveKeys[key]; found {
			return "REDACTED"
		}
	}
	return value
}

// RedactSecretValue redacts the value of a secret environment variable based on the
// hideSensitiveData flag. Non-secret values are returned unchanged.
func RedactSecretValue(hideSensitiveData, secret bool, value string) string {
	if hideSensitiveData && secret {
		return "REDACTED"
	}
	return value
}
