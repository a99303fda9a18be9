package meta

import "sync/atomic"

type serviceInfo struct {
	name    string
	version string
}

//nolint:gochecknoglobals // read by logger, tracing and the document server client without injection
var service atomic.Pointer[serviceInfo]

// SetServiceInfo records the service name and version.
// The first call wins.
func SetServiceInfo(name, version string) {
	service.CompareAndSwap(nil, &serviceInfo{name: name, version: version})
}

// ServiceName returns the service name, empty before SetServiceInfo.
func ServiceName() string {
	if s := service.Load(); s != nil {
		return s.name
	}
	return ""
}

// ServiceVersion returns the service version, empty before SetServiceInfo.
func ServiceVersion() string {
	if s := service.Load(); s != nil {
		return s.version
	}
	return ""
}

// ClientUserAgent returns "name/version" for outgoing requests, "docbridge" when unset.
func ClientUserAgent() string {
	s := service.Load()
	if s == nil || s.name == "" {
		return "docbridge"
	}
	if s.version == "" {
		return s.name
	}
	return s.name + "/" + s.version
}
