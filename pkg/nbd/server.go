// Package nbd exports a logical device over the NBD protocol on a unix
// socket.
package nbd

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/pojntfx/go-nbd/pkg/server"
	"go.uber.org/zap"
)

// Export is the device surface served to NBD clients. *po2.LogicalDevice
// implements it.
type Export interface {
	io.ReaderAt
	io.WriterAt
	Size() (int64, error)
	Sync() error
	BlockSize() int64
}

type Server struct {
	getDevice  func() (Export, error)
	ready      chan struct{}
	socketPath string
	log        *zap.Logger
}

func NewServer(socketPath string, getDevice func() (Export, error), log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	return &Server{
		getDevice:  getDevice,
		socketPath: socketPath,
		ready:      make(chan struct{}),
		log:        log,
	}
}

// Ready is closed once the listener accepts connections.
func (n *Server) Ready() <-chan struct{} {
	return n.ready
}

func (n *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig

	l, err := lc.Listen(ctx, "unix", n.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}

	go func() {
		<-ctx.Done()

		closeErr := l.Close()
		if closeErr != nil {
			n.log.Error("failed to close listener", zap.Error(closeErr))
		}
	}()

	close(n.ready)

	for {
		conn, acceptErr := l.Accept()
		if acceptErr != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				n.log.Error("failed to accept connection", zap.Error(acceptErr))

				continue
			}
		}

		go func() {
			defer func() {
				_ = conn.Close()

				if err := recover(); err != nil {
					n.log.Error("recovering from NBD server panic", zap.Any("panic", err))
				}
			}()

			device, err := n.getDevice()
			if err != nil {
				n.log.Error("could not get device", zap.Error(err))

				return
			}

			blockSize := uint32(device.BlockSize())

			err = server.Handle(
				conn,
				[]*server.Export{
					{
						Backend: device,
						Name:    "default",
					},
				},
				&server.Options{
					ReadOnly:           false,
					MinimumBlockSize:   blockSize,
					PreferredBlockSize: blockSize,
					MaximumBlockSize:   blockSize,
					SupportsMultiConn:  true,
				})
			if err != nil {
				n.log.Warn("client disconnected with error", zap.Error(err))

				return
			}
		}()
	}
}
