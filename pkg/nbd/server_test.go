package nbd

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zonekit/po2zone/pkg/backend"
	"github.com/zonekit/po2zone/pkg/po2"
)

func TestServer_AcceptsConnections(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "po2zone.sock")

	dev := backend.NewMemDevice(12, 120)
	target, err := po2.New(dev, po2.Config{Sectors: dev.Capacity()})
	require.NoError(t, err)
	logical := po2.NewLogicalDevice(target)

	server := NewServer(socketPath, func() (Export, error) {
		return logical, nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx)
	}()

	select {
	case <-server.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("server did not become ready")
	}

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
