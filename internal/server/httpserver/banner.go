package httpserver

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
)

// WriteBanner prints the two startup lines: where the server listens and
// how to reach it from another device on the local network.
func WriteBanner(w io.Writer, url string, port int) error {
	if _, err := fmt.Fprintf(w, "Serving HTTPS on %s\n", url); err != nil {
		return err
	}

	lan := LANAddresses()
	if len(lan) == 0 {
		_, err := fmt.Fprintln(w, "Open the URL above in a browser; other devices on your network can use this machine's IP address with the same port.")
		return err
	}

	urls := make([]string, 0, len(lan))
	for _, ip := range lan {
		urls = append(urls, "https://"+net.JoinHostPort(ip.String(), strconv.Itoa(port))+"/")
	}
	_, err := fmt.Fprintf(w, "From another device on your network, open %s\n", strings.Join(urls, " or "))
	return err
}

// LANAddresses returns the non-loopback IPv4 addresses of interfaces that
// are up.
func LANAddresses() []net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}

	var ips []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipnet.IP.To4(); ip4 != nil && !ip4.IsLoopback() && !ip4.IsLinkLocalUnicast() {
				ips = append(ips, ip4)
			}
		}
	}
	return ips
}
