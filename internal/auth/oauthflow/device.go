package oauthflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hytale-oss/gameserver/internal/hytalesession"
)

// minPollInterval is the floor applied to the authorization server's
// advertised polling interval.
const minPollInterval = 5 * time.Second

// slowDownIncrement is added to the polling interval each time the
// token endpoint responds with "slow_down".
const slowDownIncrement = 5 * time.Second

// DeviceStart is returned once the device-authorization request
// succeeds: UserCode and VerificationURI are presented to the operator,
// then the caller calls PollDevice to complete the flow.
type DeviceStart struct {
	hytalesession.DeviceAuthorization
}

// StartDevice requests a device/user code pair from the authorization
// server.
func StartDevice(ctx context.Context, cfg Config) (DeviceStart, error) {
	da, err := cfg.Client.StartDeviceAuthorization(ctx)
	if err != nil {
		return DeviceStart{}, fmt.Errorf("oauthflow: start device authorization: %w", err)
	}
	return DeviceStart{DeviceAuthorization: da}, nil
}

// PollDevice polls the token endpoint until the user completes
// authorization, the authorization server reports a fatal error, or the
// response's expires_in deadline elapses. It implements the
// authorization_pending/slow_down retry discipline: continue unchanged
// on authorization_pending, add slowDownIncrement to the interval on
// slow_down, and treat any other error code as fatal.
func PollDevice(ctx context.Context, cfg Config, start DeviceStart) (hytalesession.OAuthBundle, error) {
	interval := time.Duration(start.Interval) * time.Second
	if interval < minPollInterval {
		interval = minPollInterval
	}
	deadline := time.Now().Add(time.Duration(start.ExpiresIn) * time.Second)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return hytalesession.OAuthBundle{}, ctx.Err()
		case <-timer.C:
			if time.Now().After(deadline) {
				return hytalesession.OAuthBundle{}, errTimeout
			}

			bundle, err := cfg.Client.PollDeviceToken(ctx, start.DeviceCode)
			if err == nil {
				return bundle, nil
			}

			var pollErr *hytalesession.DevicePollError
			if !errors.As(err, &pollErr) {
				return hytalesession.OAuthBundle{}, fmt.Errorf("oauthflow: device poll: %w", err)
			}

			switch pollErr.Code {
			case "authorization_pending":
				// Continue polling at the same interval.
			case "slow_down":
				interval += slowDownIncrement
			default:
				return hytalesession.OAuthBundle{}, fmt.Errorf("oauthflow: device poll: %w", pollErr)
			}
			timer.Reset(interval)
		}
	}
}
