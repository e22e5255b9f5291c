// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package pilosa

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var addressRegex = regexp.MustCompile(`^(([+a-z]+)://)?([0-9a-z.-]+|\[[:0-9a-fA-F]+\])?(:([0-9]+))?$`)

// URI represents a Pilosa URI.
//
// A Pilosa URI consists of three parts: scheme, host and port. All parts are
// optional; the default URI is http://localhost:10101.
type URI struct {
	scheme string
	host   string
	port   uint16
}

// DefaultURI creates and returns the default URI.
func DefaultURI() *URI {
	return &URI{
		scheme: "http",
		host:   "localhost",
		port:   10101,
	}
}

// NewURIFromHostPort returns a URI with the given host and port.
func NewURIFromHostPort(host string, port uint16) (*URI, error) {
	uri := DefaultURI()
	uri.host = host
	uri.port = port
	return uri, nil
}

// NewURIFromAddress parses the given address and returns a URI.
func NewURIFromAddress(address string) (*URI, error) {
	m := addressRegex.FindStringSubmatch(strings.TrimSpace(address))
	if m == nil {
		return nil, errors.Errorf("invalid address: %s", address)
	}
	uri := DefaultURI()
	if m[2] != "" {
		uri.scheme = m[2]
	}
	if m[3] != "" {
		uri.host = m[3]
	}
	if m[5] != "" {
		port, err := strconv.ParseUint(m[5], 10, 16)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing port: %s", m[5])
		}
		uri.port = uint16(port)
	}
	return uri, nil
}

// Scheme returns the scheme of this URI.
func (u *URI) Scheme() string { return u.scheme }

// Host returns the host of this URI.
func (u *URI) Host() string { return u.host }

// Port returns the port of this URI.
func (u *URI) Port() uint16 { return u.port }

// Normalize returns the address with all optional parts, stripping any
// connection hints from the scheme.
func (u *URI) Normalize() string {
	scheme := u.scheme
	if idx := strings.Index(scheme, "+"); idx >= 0 {
		scheme = scheme[:idx]
	}
	return fmt.Sprintf("%s://%s:%d", scheme, u.host, u.port)
}

func (u *URI) String() string {
	return fmt.Sprintf("%s://%s:%d", u.scheme, u.host, u.port)
}

// Equals returns true if this URI is equivalent to the other.
func (u *URI) Equals(other *URI) bool {
	if u == other {
		return true
	}
	if u == nil || other == nil {
		return false
	}
	return u.scheme == other.scheme && u.host == other.host && u.port == other.port
}

// Cluster contains the addresses of the hosts in a Pilosa cluster.
//
// Hosts which fail are marked unusable until every host has failed, at which
// point all hosts are made usable again.
type Cluster struct {
	hosts []*URI
	okSet map[string]bool
	mutex sync.RWMutex
}

// DefaultCluster returns a cluster with the default URI.
func DefaultCluster() *Cluster {
	return NewClusterWithHost(DefaultURI())
}

// NewClusterWithHost returns a cluster with the given URIs.
func NewClusterWithHost(hosts ...*URI) *Cluster {
	cluster := &Cluster{
		hosts: make([]*URI, 0, len(hosts)),
		okSet: make(map[string]bool, len(hosts)),
	}
	for _, host := range hosts {
		cluster.AddHost(host)
	}
	return cluster
}

// AddHost adds a host to the cluster and marks it usable.
func (c *Cluster) AddHost(address *URI) {
	key := address.Normalize()
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, ok := c.okSet[key]; !ok {
		c.hosts = append(c.hosts, address)
	}
	c.okSet[key] = true
}

// Host returns the next usable host in the cluster, or nil if there is none.
func (c *Cluster) Host() *URI {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, host := range c.hosts {
		if c.okSet[host.Normalize()] {
			return host
		}
	}
	// all hosts are down; start over
	for key := range c.okSet {
		c.okSet[key] = true
	}
	return nil
}

// RemoveHost marks the host with the given address unusable.
func (c *Cluster) RemoveHost(address *URI) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, ok := c.okSet[address.Normalize()]; ok {
		c.okSet[address.Normalize()] = false
	}
}

// Hosts returns all hosts in the cluster.
func (c *Cluster) Hosts() []*URI {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	hosts := make([]*URI, len(c.hosts))
	copy(hosts, c.hosts)
	return hosts
}
