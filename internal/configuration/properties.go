package configuration

import "time"

type Properties struct {
	App       AppProperties       `yaml:"app"`
	Transport TransportProperties `yaml:"transport"`
	Cluster   ClusterProperties   `yaml:"cluster"`
	Metrics   MetricsProperties   `yaml:"metrics"`
}

type AppProperties struct {
	Profile  string `yaml:"profile"`
	LogLevel string `yaml:"log-level"`
}

type TransportProperties struct {
	Address              string `yaml:"address"`
	PeerPort             string `yaml:"peer-port"`
	ClientPort           string `yaml:"client-port"`
	Network              string `yaml:"network"`
	TimeoutMS            int64  `yaml:"timeout-ms"`
	MaxConcurrentStreams uint32 `yaml:"max-concurrent-streams"`
}

type ClusterProperties struct {
	NodeID         uint64            `yaml:"node-id"`
	Primaries      map[uint64]string `yaml:"primaries"`
	Replicas       map[uint64]string `yaml:"replicas"`
	W              int               `yaml:"w"`
	DefaultLeaseMS int64             `yaml:"default-lease-ms"`
	LockTTLMS      int64             `yaml:"lock-ttl-ms"`
	LockSweepMS    int64             `yaml:"lock-sweep-ms"`
	LeaseSweepMS   int64             `yaml:"lease-sweep-ms"`
}

type MetricsProperties struct {
	Addr string `yaml:"addr"`
}

func (t *TransportProperties) PeerAddr() string {
	return t.Address + ":" + t.PeerPort
}

func (t *TransportProperties) ClientAddr() string {
	return t.Address + ":" + t.ClientPort
}

func (t *TransportProperties) Timeout() time.Duration {
	return time.Duration(t.TimeoutMS) * time.Millisecond
}

func (c *ClusterProperties) LockTTL() time.Duration {
	return time.Duration(c.LockTTLMS) * time.Millisecond
}

func (c *ClusterProperties) LockSweepInterval() time.Duration {
	return time.Duration(c.LockSweepMS) * time.Millisecond
}

func (c *ClusterProperties) LeaseSweepInterval() time.Duration {
	return time.Duration(c.LeaseSweepMS) * time.Millisecond
}
