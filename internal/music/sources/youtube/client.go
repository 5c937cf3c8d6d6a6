package youtube

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	_ "github.com/bdandy/go-socks4"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/proxy"
)

const httpTimeout = 15 * time.Second

// NewHTTPClient returns a client routed through proxyStr when it is set.
// Supported schemes are http, https, socks5 and socks4. An unusable proxy
// is logged and the client falls back to a direct connection.
func NewHTTPClient(proxyStr string) *http.Client {
	logger := log.With().Str("component", "youtube").Logger()

	if proxyStr == "" {
		return &http.Client{Timeout: httpTimeout}
	}

	transport, err := proxyTransport(proxyStr)
	if err != nil {
		logger.Warn().Err(err).Msg("Proxy unusable, going direct")
		return &http.Client{Timeout: httpTimeout}
	}

	logger.Info().Str("proxy", redactProxy(proxyStr)).Msg("Using proxy")
	return &http.Client{Timeout: httpTimeout, Transport: transport}
}

func proxyTransport(proxyStr string) (*http.Transport, error) {
	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy format: %w", err)
	}

	baseDialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 10 * time.Second,
	}

	switch proxyURL.Scheme {
	case "http", "https":
		return &http.Transport{Proxy: http.ProxyURL(proxyURL)}, nil

	case "socks5":
		var auth *proxy.Auth
		if proxyURL.User != nil {
			auth = &proxy.Auth{User: proxyURL.User.Username()}
			if pass, ok := proxyURL.User.Password(); ok {
				auth.Password = pass
			}
		}
		dialer, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, baseDialer)
		if err != nil {
			return nil, fmt.Errorf("socks5 dialer: %w", err)
		}
		return dialerTransport(dialer), nil

	case "socks4":
		// go-socks4 registers the scheme with x/net/proxy on import.
		dialer, err := proxy.FromURL(proxyURL, baseDialer)
		if err != nil {
			return nil, fmt.Errorf("socks4 dialer: %w", err)
		}
		return dialerTransport(dialer), nil

	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", proxyURL.Scheme)
	}
}

func dialerTransport(dialer proxy.Dialer) *http.Transport {
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return &http.Transport{DialContext: cd.DialContext}
	}
	return &http.Transport{
		DialContext: func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		},
	}
}

func redactProxy(proxyStr string) string {
	u, err := url.Parse(proxyStr)
	if err != nil {
		return "invalid"
	}
	return u.Redacted()
}
