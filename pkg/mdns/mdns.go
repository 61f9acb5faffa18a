package mdns

import (
	"net"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_go2ir._tcp"

// NewService - zone with PTR, SRV, TXT and A/AAAA records of one instance.
// Without ips the local interfaces are used.
func NewService(name string, port int, ips []net.IP, txt []string) (*mdns.MDNSService, error) {
	if len(ips) == 0 {
		ips = LocalIPs()
	}

	// host name is set manually, otherwise hashicorp resolves os.Hostname
	host := strings.ReplaceAll(name, " ", "-") + ".local."

	return mdns.NewMDNSService(name, ServiceType, "", host, port, ips, txt)
}

func NewServer(service *mdns.MDNSService) (*mdns.Server, error) {
	return mdns.NewServer(&mdns.Config{Zone: service})
}

func LocalIPs() []net.IP {
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
			if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				ips = append(ips, ipnet.IP)
			}
		}
	}
	return ips
}

// Discovery - go2ir instances that answered during the timeout
func Discovery(timeout time.Duration) ([]*mdns.ServiceEntry, error) {
	entries := make(chan *mdns.ServiceEntry, 16)

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	var items []*mdns.ServiceEntry
	done := make(chan struct{})
	go func() {
		for entry := range entries {
			items = append(items, entry)
		}
		close(done)
	}()

	err := mdns.Query(params)
	close(entries)
	<-done

	return items, err
}
