package mqtt

type HealthStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"-"`
	LastError string `json:"-"`
}

func (c *Client) Health() HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return HealthStatus{
		Connected: c.connected && c.client.IsConnected(),
		Broker:    c.cfg.Broker,
		LastError: c.lastError,
	}
}
