package utils

import (
	"net"
)

// IsAddrAvailable reports whether a TCP listener could bind addr ("host:port").
// An empty host means every interface; hostnames are resolved first.
func IsAddrAvailable(addr string) bool {
	Verbose("Checking if %s is available", addr)
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		Verbose("error: %v", err)
		return false
	}

	listener, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		Verbose("error: %v", err)
		return false
	}

	defer listener.Close()
	return true
}
