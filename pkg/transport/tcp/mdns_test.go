package tcp

import (
	"net"
	"testing"

	"github.com/enbility/zeroconf/v3"
)

func TestEntryToEndpoint(t *testing.T) {
	tests := []struct {
		name  string
		entry *zeroconf.ServiceEntry
		want  string
		port  int
		model string
		sn    string
		ok    bool
	}{
		{
			name: "ipv4 preferred",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "fx-1"},
				HostName:      "fx-1.local.",
				Port:          57357,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.20")},
				Text:          []string{"model=OCEAN-FX", "sn=FX01234", "junk"},
			},
			want: "192.168.1.20", port: 57357, model: "OCEAN-FX", sn: "FX01234", ok: true,
		},
		{
			name: "hostname fallback",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "fx-2"},
				HostName:      "fx-2.local.",
				Port:          57357,
			},
			want: "fx-2.local", port: 57357, ok: true,
		},
		{
			name:  "no port",
			entry: &zeroconf.ServiceEntry{HostName: "x.local."},
		},
		{
			name:  "nil entry",
			entry: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep, ok := EntryToEndpoint(tt.entry)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if ep.Host != tt.want || ep.Port != tt.port {
				t.Errorf("endpoint = %s:%d, want %s:%d", ep.Host, ep.Port, tt.want, tt.port)
			}
			if ep.Model != tt.model || ep.Serial != tt.sn {
				t.Errorf("txt = %q/%q, want %q/%q", ep.Model, ep.Serial, tt.model, tt.sn)
			}
		})
	}
}
