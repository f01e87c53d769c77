package services

import (
	"errors"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"slices"
	"strings"
	"syscall"
	"time"

	"yourresumescanner/resume-scanner/internal/config"
)

const maxFetchRedirects = 5

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// urlGuard decides which hosted resumes the server may fetch. Only https
// URLs on public addresses are allowed unless insecure fetching is enabled;
// a non-empty host list narrows that further.
type urlGuard struct {
	hosts         []string
	allowInsecure bool
}

func newURLGuard(cfg config.UploadConfig) *urlGuard {
	hosts := make([]string, 0, len(cfg.URLHosts))
	for _, h := range cfg.URLHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}
	return &urlGuard{hosts: hosts, allowInsecure: cfg.AllowInsecureURLs}
}

// Check validates a URL before any connection is made.
func (g *urlGuard) Check(u *url.URL) error {
	switch u.Scheme {
	case "https":
	case "http":
		if !g.allowInsecure {
			return ErrUnsafeURL
		}
	default:
		return ErrUnsafeURL
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ErrUnsafeURL
	}
	if len(g.hosts) > 0 && !slices.Contains(g.hosts, host) {
		return ErrUnsafeURL
	}
	if addr, err := netip.ParseAddr(host); err == nil && !g.allowInsecure && !publicAddr(addr) {
		return ErrUnsafeURL
	}
	return nil
}

// control runs on every dial after name resolution, so hostnames that
// resolve to internal addresses are refused too.
func (g *urlGuard) control(_, address string, _ syscall.RawConn) error {
	if g.allowInsecure {
		return nil
	}
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !publicAddr(addr) {
		return ErrUnsafeURL
	}
	return nil
}

func (g *urlGuard) client(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: g.control,
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxFetchRedirects {
				return errors.New("too many redirects")
			}
			return g.Check(req.URL)
		},
	}
}

func publicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsGlobalUnicast() && !addr.IsPrivate() && !sharedAddressSpace.Contains(addr)
}
