package framework

// GuestFixture describes one simulated guest on the fake hypervisor
type GuestFixture struct {
	VMID     int
	Name     string
	Template bool

	// Addrs are the addresses the fake agent reports for the guest's
	// first interface, in order
	Addrs []string

	// AgentDown makes the agent endpoint answer with a structured
	// "not running" error instead of an interface list
	AgentDown bool
}

// HarnessConfig configures a full synchronization pipeline under test
type HarnessConfig struct {
	// Prefix is the network prefix usable addresses must contain
	Prefix string

	// Nodes are the fake cluster nodes to list guests from
	Nodes []string

	// Zone and Subdomain shape the record names
	Zone      string
	Subdomain string

	// Concurrency bounds both fan-out phases (default: 4)
	Concurrency int
}
