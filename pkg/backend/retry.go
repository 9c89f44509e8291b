package backend

import (
	"fmt"
	"time"

	"github.com/zonekit/po2zone/pkg/zone"
)

const (
	ReadRetryDelay = 1 * time.Millisecond
)

// retryDevice retries failed reads with a fixed delay. Retry policy lives
// at the device layer; the po2 target never retries.
type retryDevice struct {
	zone.Device

	maxRetries int
	retryDelay time.Duration
}

// WithReadRetries wraps a device so transient read failures are retried up
// to maxRetries times.
func WithReadRetries(dev zone.Device, maxRetries int, retryDelay time.Duration) zone.Device {
	return &retryDevice{
		Device:     dev,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

func (r *retryDevice) ReadAt(p []byte, off int64) (n int, err error) {
	for i := 0; i < r.maxRetries; i++ {
		n, err = r.Device.ReadAt(p, off)
		if err != nil {
			time.Sleep(r.retryDelay)

			continue
		}

		return n, nil
	}

	return 0, fmt.Errorf("failed to read after %d retries: %w", r.maxRetries, err)
}
