package reachability

import "strings"

// Flags mirrors the platform reachability flag set.
type Flags uint32

const (
	FlagTransientConnection  Flags = 1 << 0
	FlagReachable            Flags = 1 << 1
	FlagConnectionRequired   Flags = 1 << 2
	FlagConnectionOnTraffic  Flags = 1 << 3
	FlagInterventionRequired Flags = 1 << 4
	FlagConnectionOnDemand   Flags = 1 << 5
	FlagIsLocalAddress       Flags = 1 << 16
	FlagIsDirect             Flags = 1 << 17
	FlagIsWWAN               Flags = 1 << 18
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagTransientConnection, "transient"},
	{FlagReachable, "reachable"},
	{FlagConnectionRequired, "connection-required"},
	{FlagConnectionOnTraffic, "on-traffic"},
	{FlagInterventionRequired, "intervention-required"},
	{FlagConnectionOnDemand, "on-demand"},
	{FlagIsLocalAddress, "local"},
	{FlagIsDirect, "direct"},
	{FlagIsWWAN, "wwan"},
}

// Has reports whether every bit of o is set.
func (f Flags) Has(o Flags) bool { return f&o == o }

func (f Flags) String() string {
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// actuallyReachable applies the classification rule: the host must be
// reachable, and any required connection must come up automatically without
// user intervention.
func (f Flags) actuallyReachable() bool {
	if !f.Has(FlagReachable) {
		return false
	}
	if !f.Has(FlagConnectionRequired) {
		return true
	}
	canConnect := f.Has(FlagConnectionOnDemand) || f.Has(FlagConnectionOnTraffic)
	return canConnect && !f.Has(FlagInterventionRequired)
}

// ConnectionType is the interface class a reachable host is reached over.
type ConnectionType int

const (
	EthernetOrWiFi ConnectionType = iota
	Cellular
)

func (c ConnectionType) String() string {
	if c == Cellular {
		return "cellular"
	}
	return "ethernetOrWiFi"
}

// Status is the classified reachability.
type Status struct {
	kind statusKind
	conn ConnectionType
}

type statusKind int

const (
	kindUnknown statusKind = iota
	kindNotReachable
	kindReachable
)

var (
	// StatusUnknown is reported when the flags cannot be read.
	StatusUnknown = Status{kind: kindUnknown}
	// StatusNotReachable is reported when the host cannot be reached.
	StatusNotReachable = Status{kind: kindNotReachable}
)

// Reachable returns the reachable status for conn.
func Reachable(conn ConnectionType) Status {
	return Status{kind: kindReachable, conn: conn}
}

// StatusFromFlags classifies flags. The cellular flag takes precedence over
// ethernet or WiFi.
func StatusFromFlags(f Flags) Status {
	if !f.actuallyReachable() {
		return StatusNotReachable
	}
	if f.Has(FlagIsWWAN) {
		return Reachable(Cellular)
	}
	return Reachable(EthernetOrWiFi)
}

// IsReachable reports whether the status is reachable over any interface.
func (s Status) IsReachable() bool { return s.kind == kindReachable }

// ConnectionType returns the interface class; ok is false unless reachable.
func (s Status) ConnectionType() (ConnectionType, bool) {
	return s.conn, s.kind == kindReachable
}

func (s Status) String() string {
	switch s.kind {
	case kindNotReachable:
		return "notReachable"
	case kindReachable:
		return "reachable(" + s.conn.String() + ")"
	default:
		return "unknown"
	}
}
