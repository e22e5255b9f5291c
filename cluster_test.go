package pilosa

import (
	"testing"
)

func TestNewURIFromAddress(t *testing.T) {
	tests := []struct {
		address string
		scheme  string
		host    string
		port    uint16
	}{
		{"http://localhost:10101", "http", "localhost", 10101},
		{"localhost", "http", "localhost", 10101},
		{"localhost:3000", "http", "localhost", 3000},
		{"https://index1.pilosa.com", "https", "index1.pilosa.com", 10101},
		{"http+protobuf://db.pilosa.com:20202", "http+protobuf", "db.pilosa.com", 20202},
		{"10.0.0.1:9999", "http", "10.0.0.1", 9999},
		{":5000", "http", "localhost", 5000},
	}
	for _, tst := range tests {
		uri, err := NewURIFromAddress(tst.address)
		if err != nil {
			t.Fatalf("parsing %s: %v", tst.address, err)
		}
		if uri.Scheme() != tst.scheme || uri.Host() != tst.host || uri.Port() != tst.port {
			t.Fatalf("parsing %s: got %s://%s:%d", tst.address, uri.Scheme(), uri.Host(), uri.Port())
		}
	}
}

func TestNewURIFromAddressInvalid(t *testing.T) {
	for _, address := range []string{"foo:bar", "http://foo:", "foo:65536", "cache://a?b=1"} {
		if _, err := NewURIFromAddress(address); err == nil {
			t.Fatalf("parsing %s should have failed", address)
		}
	}
}

func TestURINormalize(t *testing.T) {
	uri, err := NewURIFromAddress("http+protobuf://big-data.pilosa.com:6888")
	if err != nil {
		t.Fatal(err)
	}
	if uri.Normalize() != "http://big-data.pilosa.com:6888" {
		t.Fatalf("unexpected normalized address: %s", uri.Normalize())
	}
}

func TestURIEquals(t *testing.T) {
	uri1 := DefaultURI()
	uri2, err := NewURIFromAddress("http://localhost:10101")
	if err != nil {
		t.Fatal(err)
	}
	if !uri1.Equals(uri2) {
		t.Fatalf("%s should equal %s", uri1, uri2)
	}
	if uri1.Equals(nil) {
		t.Fatal("a URI should not equal nil")
	}
}

func TestClusterHostRotation(t *testing.T) {
	uri1, _ := NewURIFromAddress("node1")
	uri2, _ := NewURIFromAddress("node2")
	c := NewClusterWithHost(uri1, uri2)

	if host := c.Host(); !host.Equals(uri1) {
		t.Fatalf("expected node1, got %s", host)
	}
	c.RemoveHost(uri1)
	if host := c.Host(); !host.Equals(uri2) {
		t.Fatalf("expected node2, got %s", host)
	}
	c.RemoveHost(uri2)
	// all hosts down; this call reports none and resets the cluster
	if host := c.Host(); host != nil {
		t.Fatalf("expected no host, got %s", host)
	}
	if host := c.Host(); !host.Equals(uri1) {
		t.Fatalf("expected node1 after reset, got %s", host)
	}
}

func TestClusterAddHostIdempotent(t *testing.T) {
	uri1, _ := NewURIFromAddress("node1")
	uri2, _ := NewURIFromAddress("node1:10101")
	c := NewClusterWithHost(uri1)
	c.AddHost(uri2)
	if len(c.Hosts()) != 1 {
		t.Fatalf("expected 1 host, got %d", len(c.Hosts()))
	}
}
