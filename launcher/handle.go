package launcher

import (
	"context"
	"net"
	"strconv"

	"labserve/config"
	"labserve/web"
)

// Handle is one bound, running lab server.
type Handle struct {
	Lab  config.LabEntry
	Root string

	server *web.Server
	host   string
	done   chan struct{}
	err    error
}

// Addr returns the address the lab is listening on.
func (h *Handle) Addr() net.Addr {
	return h.server.Addr()
}

// Port returns the bound port. It differs from Lab.Port when Lab.Port is 0.
func (h *Handle) Port() int {
	if tcp, ok := h.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return h.Lab.Port
}

// URL returns the address a browser on this machine should open.
func (h *Handle) URL() string {
	host := h.host
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(h.Port()))
}

// Done is closed once the serve loop has returned.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the serve loop's error. It is only meaningful after Done is
// closed; a clean shutdown leaves it nil.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Shutdown stops accepting connections and waits for the serve loop to end.
// Once Stop returns the listener is closed, so the loop always exits.
func (h *Handle) Shutdown(ctx context.Context) error {
	err := h.server.Stop(ctx)
	<-h.done
	return err
}
