package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zonekit/po2zone/pkg/backend"
	"github.com/zonekit/po2zone/pkg/env"
	"github.com/zonekit/po2zone/pkg/logger"
	"github.com/zonekit/po2zone/pkg/nbd"
	"github.com/zonekit/po2zone/pkg/po2"
	"github.com/zonekit/po2zone/pkg/zone"
)

func main() {
	filePath := flag.String("file", "", "backing file path")
	zoneSectors := flag.Int64("zone-sectors", 12288, "usable sectors per zone")
	capacitySectors := flag.Int64("capacity-sectors", 122880, "device capacity in sectors")
	socketPath := flag.String("socket", env.GetEnv("PO2ZONE_SOCKET", "/tmp/po2zone.sock"), "NBD unix socket path")
	readRetries := flag.Int("read-retries", 0, "retry failed backing reads this many times")
	debug := flag.Bool("debug", env.IsDebug(), "debug logging")
	flag.Parse()

	log, err := logger.New(logger.Config{
		ServiceName: "po2zoned",
		IsDebug:     *debug,
	})
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	if *filePath == "" {
		log.Fatal("missing -file")
	}

	if err := run(log, *filePath, *zoneSectors, *capacitySectors, *socketPath, *readRetries); err != nil {
		log.Fatal("po2zoned failed", zap.Error(err))
	}
}

func run(log *zap.Logger, filePath string, zoneSectors, capacitySectors int64, socketPath string, readRetries int) error {
	mmapDev, err := backend.NewMmapDevice(filePath, zoneSectors, capacitySectors)
	if err != nil {
		return err
	}
	defer mmapDev.Close()

	var dev zone.Device = mmapDev
	if readRetries > 0 {
		dev = backend.WithReadRetries(mmapDev, readRetries, backend.ReadRetryDelay)
	}

	target, err := po2.New(dev, po2.Config{
		Begin:   0,
		Sectors: dev.Capacity(),
		Logger:  log,
	})
	if err != nil {
		return err
	}

	geo := target.Geometry()
	log.Info("logical device ready",
		zap.Int64("zone_sectors", geo.ZoneSectors),
		zap.Int64("po2_zone_sectors", geo.PO2ZoneSectors),
		zap.Int64("zones", geo.Zones),
		zap.Int64("logical_capacity_sectors", geo.Capacity))

	logical := po2.NewLogicalDevice(target)

	if rmErr := os.Remove(socketPath); rmErr != nil && !os.IsNotExist(rmErr) {
		return rmErr
	}
	defer os.Remove(socketPath)

	server := nbd.NewServer(
		socketPath,
		func() (nbd.Export, error) {
			return logical, nil
		},
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, ctx := errgroup.WithContext(ctx)

	e.Go(func() error {
		return server.Run(ctx)
	})

	select {
	case <-server.Ready():
		log.Info("serving NBD", zap.String("socket", socketPath))
	case <-ctx.Done():
	}

	err = e.Wait()
	if err != nil && err != context.Canceled {
		return err
	}

	return nil
}
