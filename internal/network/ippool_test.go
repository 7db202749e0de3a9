package network

import "testing"

func TestUsableHosts(t *testing.T) {
	cases := []struct {
		cidr string
		want int
	}{
		{"192.168.0.0/24", 254},
		{"10.0.0.0/30", 2},
		{"10.0.0.0/31", 2},
		{"10.0.0.1/32", 1},
		{"172.16.0.0/22", 1022},
	}

	for _, tc := range cases {
		got, err := UsableHosts(tc.cidr)
		if err != nil {
			t.Errorf("UsableHosts(%q): erro inesperado %v", tc.cidr, err)
			continue
		}
		if got != tc.want {
			t.Errorf("UsableHosts(%q) = %d, esperado %d", tc.cidr, got, tc.want)
		}
	}
}

func TestUsableHostsRejectsInvalid(t *testing.T) {
	if _, err := UsableHosts("300.1.1.1/24"); err == nil {
		t.Error("CIDR inválido aceito")
	}
	if _, err := UsableHosts("2001:db8::/64"); err == nil {
		t.Error("bloco IPv6 aceito")
	}
}
