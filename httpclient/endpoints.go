// httpclient/endpoints.go
package httpclient

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultBaseDomain is the domain instance names resolve under.
	DefaultBaseDomain = ".envhub.io"

	// APIBasePath prefixes every versioned API endpoint.
	APIBasePath = "/api/v1"

	// VariablesEndpointPath is the collection endpoint for environment variables.
	VariablesEndpointPath = APIBasePath + "/variables"

	// VariablesExportEndpointPath streams the variable set as a dotenv file.
	VariablesExportEndpointPath = VariablesEndpointPath + "/export"

	// HealthEndpointPath reports service health without authentication.
	HealthEndpointPath = APIBasePath + "/health"
)

// resolveBaseURL determines the scheme and host all endpoints are joined to.
// An override takes precedence over instance-based addressing so the client
// can sit behind API gateways or point at test servers.
func resolveBaseURL(config ClientConfig) string {
	if config.OverrideBaseURL != "" {
		return strings.TrimRight(config.OverrideBaseURL, "/")
	}
	return fmt.Sprintf("https://%s%s", config.InstanceName, DefaultBaseDomain)
}

// VariableEndpoint returns the endpoint path for a single named variable.
// The name is path-escaped; validation of the name itself is the caller's
// concern.
func VariableEndpoint(name string) string {
	return VariablesEndpointPath + "/" + url.PathEscape(name)
}
