package jpeg

import "testing"

func TestMarkerIsRST(t *testing.T) {
	for m := markerRST0; m <= markerRST7; m++ {
		if !m.isRST() {
			t.Fatalf("marker 0x%04X should be an RSTn marker", uint16(m))
		}
	}
	if markerSOI.isRST() {
		t.Fatalf("SOI should not be classified as RSTn")
	}
}

func TestMarkerIsApp(t *testing.T) {
	for m := markerAPP0; m <= markerAPPF; m++ {
		if !m.isApp() {
			t.Fatalf("marker 0x%04X should be an APPn marker", uint16(m))
		}
	}
	if markerDQT.isApp() {
		t.Fatalf("DQT should not be classified as APPn")
	}
}

func TestMarkerNameCoversKnownMarkers(t *testing.T) {
	cases := map[marker]string{
		markerSOF0: "SOF0",
		markerSOF2: "SOF2",
		markerDHT:  "DHT",
		markerDQT:  "DQT",
		markerSOS:  "SOS",
		markerSOI:  "SOI",
		markerEOI:  "EOI",
	}
	for m, want := range cases {
		if got := m.name(); got != want {
			t.Fatalf("marker 0x%04X name = %q, want %q", uint16(m), got, want)
		}
	}
	if got := markerRST0.name(); got != "RSTn" {
		t.Fatalf("RST0 name = %q, want RSTn", got)
	}
	if got := markerAPP0.name(); got != "APPn" {
		t.Fatalf("APP0 name = %q, want APPn", got)
	}
}
