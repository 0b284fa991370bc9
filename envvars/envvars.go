// envvars/envvars.go
// Package envvars provides typed operations on the environment variables held by an
// EnvHub instance: read, upsert, delete, list and export. It sits on top of the
// httpclient request envelope, which owns authentication, retries and error decoding.
package envvars

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/envhubhq/go-envhub-client/headers/redact"
	"github.com/envhubhq/go-envhub-client/httpclient"
	"go.uber.org/zap"
)

// envVarNameRegex matches POSIX-style variable names, the only shape the service accepts.
var envVarNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// EnvVar is a single environment variable held by the service. Secret variables come
// back with an empty value unless the read asked for the value to be revealed and the
// access key carries the reveal scope.
type EnvVar struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	Secret    bool      `json:"secret"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EnvVarList is the collection shape returned by the list endpoint.
type EnvVarList struct {
	TotalCount int      `json:"total_count"`
	Results    []EnvVar `json:"results"`
}

// upsertRequest is the body sent when creating or updating a variable.
type upsertRequest struct {
	Value  string `json:"value"`
	Secret bool   `json:"secret"`
}

// Service exposes the environment variable operations of an EnvHub instance.
type Service struct {
	client *httpclient.Client
	log    *zap.SugaredLogger
}

// NewService creates a Service backed by the given client.
func NewService(client *httpclient.Client) *Service {
	return &Service{
		client: client,
		log:    client.Logger,
	}
}

// GetEnv fetches a variable by name. For secret variables the value field is empty,
// use GetEnvValue to resolve the stored value.
func (s *Service) GetEnv(name string) (*EnvVar, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	var envVar EnvVar
	resp, err := s.client.DoRequest(http.MethodGet, httpclient.VariableEndpoint(name), nil, &envVar)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	s.log.Debug("Fetched environment variable", zap.String("name", envVar.Name), zap.Bool("secret", envVar.Secret))
	return &envVar, nil
}

// GetEnvValue fetches a variable and returns its value, asking the service to reveal
// secret values. When the access key lacks the reveal scope the service answers with
// an empty value for the secret; that is reported as an error rather than handed back
// as if the variable were empty.
func (s *Service) GetEnvValue(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	endpoint := httpclient.VariableEndpoint(name) + "?reveal=true"
	var envVar EnvVar
	resp, err := s.client.DoRequest(http.MethodGet, endpoint, nil, &envVar)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if envVar.Secret && envVar.Value == "" {
		return "", fmt.Errorf("access key lacks the reveal scope for secret variable %s", name)
	}

	return envVar.Value, nil
}

// SetEnv creates or updates a plain variable and returns its stored state.
func (s *Service) SetEnv(name, value string) (*EnvVar, error) {
	return s.upsert(name, value, false)
}

// SetSecretEnv creates or updates a secret variable. The service stores the value
// encrypted and omits it from unrevealed reads.
func (s *Service) SetSecretEnv(name, value string) (*EnvVar, error) {
	return s.upsert(name, value, true)
}

func (s *Service) upsert(name, value string, secret bool) (*EnvVar, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	body := upsertRequest{Value: value, Secret: secret}
	var envVar EnvVar
	resp, err := s.client.DoRequest(http.MethodPut, httpclient.VariableEndpoint(name), body, &envVar)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	action := "updated"
	if resp.StatusCode == http.StatusCreated {
		action = "created"
	}
	s.log.Info("Environment variable "+action,
		zap.String("name", name),
		zap.Bool("secret", secret),
		zap.String("value", redact.RedactSecretValue(s.client.HideSensitiveData(), secret, value)),
	)

	return &envVar, nil
}

// DeleteEnv removes a variable. Deleting a variable that does not exist surfaces the
// service's not found error.
func (s *Service) DeleteEnv(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	resp, err := s.client.DoRequest(http.MethodDelete, httpclient.VariableEndpoint(name), nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	s.log.Info("Environment variable deleted", zap.String("name", name))
	return nil
}

// ListEnvs returns every variable on the instance. Secret values are omitted from the
// listing regardless of scope.
func (s *Service) ListEnvs() (*EnvVarList, error) {
	var list EnvVarList
	resp, err := s.client.DoRequest(http.MethodGet, httpclient.VariablesEndpointPath, nil, &list)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	s.log.Debug("Listed environment variables", zap.Int("total_count", list.TotalCount))
	return &list, nil
}

// ExportDotenv streams the instance's variables in dotenv format into w. Secret
// values are included only when the access key carries the reveal scope.
func (s *Service) ExportDotenv(w io.Writer) error {
	resp, err := s.client.DoDownloadRequest(http.MethodGet, httpclient.VariablesExportEndpointPath, w)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return err
	}

	s.log.Info("Exported environment variables", zap.Int("status_code", resp.StatusCode))
	return nil
}

// validateName rejects names the service would refuse, saving the round trip.
func validateName(name string) error {
	if !envVarNameRegex.MatchString(name) {
		return fmt.Errorf("invalid environment variable name: %q", name)
	}
	return nil
}
