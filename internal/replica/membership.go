package replica

// Membership is the locally installed cluster view: which nodes vote in
// write quorums (primaries), which only receive commits and serve dirty
// reads (replicas), and the quorum size W. Node lists are installed
// administratively; there is no discovery.
type Membership struct {
	Primaries map[uint64]string
	Replicas  map[uint64]string
	W         int
}

func (m Membership) clone() Membership {
	return Membership{
		Primaries: copyNodes(m.Primaries),
		Replicas:  copyNodes(m.Replicas),
		W:         m.W,
	}
}

func copyNodes(nodes map[uint64]string) map[uint64]string {
	out := make(map[uint64]string, len(nodes))
	for id, addr := range nodes {
		out[id] = addr
	}
	return out
}

func (m Membership) isReplica(id uint64) bool {
	_, ok := m.Replicas[id]
	return ok
}

// Members returns primaries and replicas merged into one id -> address map,
// the phase-2 broadcast set.
func (m Membership) Members() map[uint64]string {
	out := make(map[uint64]string, len(m.Primaries)+len(m.Replicas))
	for id, addr := range m.Primaries {
		out[id] = addr
	}
	for id, addr := range m.Replicas {
		out[id] = addr
	}
	return out
}
