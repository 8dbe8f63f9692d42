// Package preflight probes broker reachability before the publish loop
// starts. A failed check is a configuration error, not a transient fault:
// the caller should exit rather than enter the retry loop.
package preflight

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/go-ping/ping"
)

// Check probes host with an ICMP echo, then dials host:port over TCP. The
// TCP dial is authoritative; an ICMP failure alone is only logged, since
// many networks drop echo requests. There is no retry policy here.
func Check(ctx context.Context, host string, port int, timeout time.Duration, log *slog.Logger) error {
	if err := icmpProbe(host, timeout); err != nil {
		log.Warn("icmp probe failed, relying on tcp check",
			slog.String("host", host),
			slog.Any("err", err),
		)
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("broker unreachable at %s: %w", addr, err)
	}
	conn.Close()

	log.Info("preflight check passed", slog.String("addr", addr))
	return nil
}

func icmpProbe(host string, timeout time.Duration) error {
	pinger, err := ping.NewPinger(host)
	if err != nil {
		return fmt.Errorf("create pinger: %w", err)
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(false)

	if err := pinger.Run(); err != nil {
		return fmt.Errorf("ping %s: %w", host, err)
	}
	if pinger.Statistics().PacketsRecv == 0 {
		return fmt.Errorf("ping %s: no reply", host)
	}
	return nil
}
