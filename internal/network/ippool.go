package network

import (
	"errors"
	"fmt"
	"net"
)

// UsableHosts calcula quantos endereços utilizáveis um bloco IPv4 tem.
// Blocos /31 e /32 não reservam rede/broadcast.
func UsableHosts(cidr string) (int, error) {
	ip, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return 0, fmt.Errorf("CIDR inválido: %w", err)
	}
	if ip.To4() == nil {
		return 0, errors.New("apenas blocos IPv4 são suportados")
	}

	ones, bits := ipNet.Mask.Size()
	hosts := 1 << (bits - ones)
	if hosts > 2 {
		hosts -= 2 // rede e broadcast
	}
	return hosts, nil
}
