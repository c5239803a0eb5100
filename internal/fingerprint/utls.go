package fingerprint

import (
	"context"
	"fmt"
	"net"
	"net/http"

	utls "github.com/refraction-networking/utls"
)

// Profile names a TLS ClientHello fingerprint.
type Profile string

const (
	ProfileChrome  Profile = "chrome"
	ProfileFirefox Profile = "firefox"
	ProfileSafari  Profile = "safari"
	ProfileGo      Profile = "go" // crypto/tls, no mimicry
)

// ParseProfile maps a config string to a Profile. The empty string selects Chrome.
func ParseProfile(s string) (Profile, error) {
	switch p := Profile(s); p {
	case "":
		return ProfileChrome, nil
	case ProfileChrome, ProfileFirefox, ProfileSafari, ProfileGo:
		return p, nil
	default:
		return "", fmt.Errorf("fingerprint: unknown profile %q", s)
	}
}

func helloID(p Profile) (utls.ClientHelloID, error) {
	switch p {
	case ProfileChrome:
		return utls.HelloChrome_Auto, nil
	case ProfileFirefox:
		return utls.HelloFirefox_Auto, nil
	case ProfileSafari:
		return utls.HelloIOS_Auto, nil
	default:
		return utls.ClientHelloID{}, fmt.Errorf("fingerprint: unknown profile %q", p)
	}
}

// Transport returns a round tripper whose TLS handshake mimics the browser
// named by p. ProfileGo returns a plain clone of http.DefaultTransport.
//
// The mimicked hello offers only http/1.1 in ALPN: net/http cannot speak h2
// over a connection returned from DialTLSContext.
func Transport(p Profile) (http.RoundTripper, error) {
	return newTransport(p, &utls.Config{})
}

// newTransport lets tests supply a base TLS config (e.g. to trust a test CA).
func newTransport(p Profile, base *utls.Config) (http.RoundTripper, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if p == ProfileGo {
		return transport, nil
	}

	id, err := helloID(p)
	if err != nil {
		return nil, err
	}

	// Fail at construction rather than on the first dial.
	if _, err := utls.UTLSIdToSpec(id); err != nil {
		return nil, fmt.Errorf("fingerprint: build %s hello: %w", p, err)
	}

	dialer := &net.Dialer{}
	transport.ForceAttemptHTTP2 = false
	transport.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		tcpConn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}

		// ApplyPreset mutates the extensions, so every connection gets a fresh spec.
		helloSpec, err := utls.UTLSIdToSpec(id)
		if err != nil {
			_ = tcpConn.Close()
			return nil, fmt.Errorf("fingerprint: build %s hello: %w", p, err)
		}
		pinHTTP1(&helloSpec)

		cfg := base.Clone()
		cfg.ServerName = host

		uConn := utls.UClient(tcpConn, cfg, utls.HelloCustom)
		if err := uConn.ApplyPreset(&helloSpec); err != nil {
			_ = tcpConn.Close()
			return nil, fmt.Errorf("fingerprint: apply %s hello: %w", p, err)
		}
		if err := uConn.HandshakeContext(ctx); err != nil {
			_ = tcpConn.Close()
			return nil, fmt.Errorf("fingerprint: utls handshake failed: %w", err)
		}
		return uConn, nil
	}

	return transport, nil
}

func pinHTTP1(spec *utls.ClientHelloSpec) {
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}
}
