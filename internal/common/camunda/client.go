package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chat-assistant/internal/common/config"
	"chat-assistant/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// RetryConfig defines retry behavior while the broker comes up.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries: 5,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
}

// Connect dials the gateway and waits for a topology response, retrying
// transient failures with exponential backoff.
func Connect(ctx context.Context, cfg config.CamundaConfig, retry RetryConfig, log logger.Logger) (zbc.Client, error) {
	client, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	requestTimeout := config.GetDuration(cfg.RequestTimeout)
	for attempt := 0; ; attempt++ {
		err = topology(ctx, client, requestTimeout)
		if err == nil {
			return client, nil
		}
		if !isRetryableZeebeError(err) || attempt >= retry.MaxRetries {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.BrokerAddress, err)
		}

		delay := retry.BaseDelay * time.Duration(1<<attempt)
		if delay > retry.MaxDelay {
			delay = retry.MaxDelay
		}
		log.Warn("zeebe not ready, retrying", map[string]interface{}{
			"attempt": attempt + 1,
			"delay":   delay.String(),
			"error":   err.Error(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		}
	}
}

func topology(ctx context.Context, client zbc.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err := client.NewTopologyCommand().Send(ctx)
	return err
}

// HealthCheck performs a topology request against the broker.
func HealthCheck(ctx context.Context, client zbc.Client) error {
	if err := topology(ctx, client, 5*time.Second); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

func isRetryableZeebeError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
