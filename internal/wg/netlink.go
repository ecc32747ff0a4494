package wg

import (
	"context"
	"io"
	"log/slog"

	"golang.zx2c4.com/wireguard/wgctrl"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

type deviceLister interface {
	Devices() ([]*wgtypes.Device, error)
}

// NetlinkReader reads state by listing WireGuard devices through wgctrl,
// without spawning wg. It needs CAP_NET_ADMIN to see the devices.
type NetlinkReader struct {
	client deviceLister
	Prefix string
	Logger *slog.Logger
}

// NewNetlinkReader opens a wgctrl client.
func NewNetlinkReader(prefix string, logger *slog.Logger) (*NetlinkReader, error) {
	client, err := wgctrl.New()
	if err != nil {
		return nil, &IntrospectionError{Err: err}
	}
	return &NetlinkReader{client: client, Prefix: prefix, Logger: logger}, nil
}

func (r *NetlinkReader) Current(_ context.Context) (State, error) {
	devices, err := r.client.Devices()
	if err != nil {
		return State{}, &IntrospectionError{Err: err}
	}
	names := make([]string, 0, len(devices))
	for _, d := range devices {
		names = append(names, d.Name)
	}
	return choose(names, r.Prefix, r.Logger), nil
}

// Close releases the wgctrl client.
func (r *NetlinkReader) Close() error {
	if c, ok := r.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
