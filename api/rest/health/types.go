package health

type Response struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type StatsResponse struct {
	Sessions   int  `json:"sessions"`
	HistoryLen int  `json:"history_len"`
	Accepting  bool `json:"accepting"`
}

// the subset of the hub the stats endpoint reads
type RelayStats interface {
	ClientCount() int
	HistoryLen() int
	Accepting() bool
}
