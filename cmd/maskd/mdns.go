package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/hashicorp/mdns"

	"github.com/synanno/maskdraw/config"
)

// advertise announces the service on the local network.
func advertise(c config.MDNS, listen string) (*mdns.Server, error) {
	_, portStr, err := net.SplitHostPort(listen)
	if err != nil {
		return nil, fmt.Errorf("mdns: listen address: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("mdns: port: %w", err)
	}

	service, err := mdns.NewMDNSService(c.Instance, c.Service, "", "", port, nil, []string{"maskd"})
	if err != nil {
		return nil, fmt.Errorf("mdns: service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("mdns: server: %w", err)
	}
	return server, nil
}
