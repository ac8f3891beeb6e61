// Package discovery advertises the server on the local network over mDNS so
// drawing clients can find it without configuration.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

// Advertiser owns a running mDNS responder.
type Advertiser struct {
	server *mdns.Server
}

// Advertise announces service on port. txt is published as the TXT record.
func Advertise(service string, port int, txt ...string) (*Advertiser, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("get hostname: %w", err)
	}

	zone, err := mdns.NewMDNSService(host, service, "", "", port, nil, txt)
	if err != nil {
		return nil, fmt.Errorf("create mdns service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: zone})
	if err != nil {
		return nil, fmt.Errorf("start mdns server: %w", err)
	}
	slog.Info("advertising over mdns", "service", service, "host", host, "port", port)
	return &Advertiser{server: server}, nil
}

func (a *Advertiser) Shutdown() error {
	return a.server.Shutdown()
}

// Peer is a server found on the network.
type Peer struct {
	Name string
	Addr string
	Info []string
}

// Browse looks up service for at most timeout, or until ctx is done, and
// returns the peers that answered with an IPv4 address.
func Browse(ctx context.Context, service string, timeout time.Duration) ([]Peer, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	params := mdns.DefaultParams(service)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errCh := make(chan error, 1)
	go func() {
		errCh <- mdns.Query(params)
		close(entries)
	}()

	var peers []Peer
	for {
		select {
		case e, ok := <-entries:
			if !ok {
				return peers, <-errCh
			}
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			peers = append(peers, Peer{
				Name: e.Name,
				Addr: fmt.Sprintf("%s:%d", e.AddrV4, e.Port),
				Info: e.InfoFields,
			})
		case <-ctx.Done():
			return peers, ctx.Err()
		}
	}
}
