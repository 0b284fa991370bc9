// httpclient/ping.go
package httpclient

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/envhubhq/go-envhub-client/ratehandler"
	"go.uber.org/zap"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// HealthStatus is the payload returned by the service health endpoint.
type HealthStatus struct {
	Status string `json:"status"`
}

// DoHealthCheck probes the service health endpoint. The endpoint requires no
// authentication, so the probe bypasses the token gate and talks to the
// service directly. Failed probes are retried with backoff up to the client's
// configured retry budget, which makes this suitable for startup checks in
// environments where the service may still be coming up.
func (c *Client) DoHealthCheck() (*HealthStatus, error) {
	log := c.Logger
	log.Debug("Starting health check", zap.String("endpoint", HealthEndpointPath))

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetryAttempts; attempt++ {
		if attempt > 0 {
			backoffDuration := ratehandler.CalculateBackoff(attempt)
			log.Warn("Health check failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("wait_duration", backoffDuration),
				zap.Error(lastErr),
			)
			time.Sleep(backoffDuration)
		}

		healthStatus, err := c.healthProbe()
		if err == nil {
			log.Debug("Health check successful", zap.String("status", healthStatus.Status))
			return healthStatus, nil
		}
		lastErr = err
	}

	log.Error("Health check failed after maximum retries", zap.Error(lastErr))
	return nil, fmt.Errorf("health check failed after %d attempts: %w", c.config.MaxRetryAttempts+1, lastErr)
}

// healthProbe performs a single unauthenticated probe of the health endpoint.
func (c *Client) healthProbe() (*HealthStatus, error) {
	req, err := http.NewRequest(http.MethodGet, c.requestURL(HealthEndpointPath), http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health endpoint returned status %d", resp.StatusCode)
	}

	var healthStatus HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&healthStatus); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	if healthStatus.Status != "ok" {
		return nil, fmt.Errorf("service reported unhealthy status %q", healthStatus.Status)
	}

	return &healthStatus, nil
}

// DoPing performs an ICMP ping to the specified host. It sends a single echo
// request and waits up to timeout for the echo reply. Raw ICMP sockets
// require elevated privileges on most platforms.
func (c *Client) DoPing(host string, timeout time.Duration) error {
	log := c.Logger

	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		log.Error("Failed to listen for ICMP packets", zap.Error(err))
		return fmt.Errorf("failed to listen for ICMP packets: %w", err)
	}
	defer conn.Close()

	dst, err := net.ResolveIPAddr("ip4", host)
	if err != nil {
		log.Error("Failed to resolve IP address", zap.String("host", host), zap.Error(err))
		return fmt.Errorf("failed to resolve IP address for host %s: %w", host, err)
	}

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho, Code: 0,
		Body: &icmp.Echo{
			ID: os.Getpid() & 0xffff, Seq: 1,
			Data: []byte("HELLO"),
		},
	}

	msgBytes, err := msg.Marshal(nil)
	if err != nil {
		log.Error("Failed to marshal ICMP message", zap.Error(err))
		return fmt.Errorf("failed to marshal ICMP message: %w", err)
	}

	if _, err := conn.WriteTo(msgBytes, dst); err != nil {
		log.Error("Failed to send ICMP message", zap.Error(err))
		return fmt.Errorf("failed to send ICMP message: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		log.Error("Failed to set read deadline", zap.Error(err))
		return fmt.Errorf("failed to set read deadline: %w", err)
	}

	reply := make([]byte, 1500)
	n, _, err := conn.ReadFrom(reply)
	if err != nil {
		log.Error("Failed to receive ICMP reply", zap.Error(err))
		return fmt.Errorf("failed to receive ICMP reply: %w", err)
	}

	parsedMsg, err := icmp.ParseMessage(1, reply[:n])
	if err != nil {
		log.Error("Failed to parse ICMP message", zap.Error(err))
		return fmt.Errorf("failed to parse ICMP message: %w", err)
	}

	if parsedMsg.Type != ipv4.ICMPTypeEchoReply {
		log.Error("Did not receive ICMP Echo Reply", zap.Any("received_type", parsedMsg.Type))
		return fmt.Errorf("did not receive ICMP echo reply, received type: %v", parsedMsg.Type)
	}

	log.Info("Ping successful", zap.String("host", host))
	return nil
}
