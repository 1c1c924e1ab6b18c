package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start requests the daemon to start the show engine.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Stagehand.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop the show engine.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Stagehand.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves daemon and show status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Stagehand.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats retrieves engine counters.
func (c *Client) Stats() (*StatsResponse, error) {
	var resp StatsResponse
	if err := c.client.Call("Stagehand.Stats", StatsRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Skip advances past the active product scene.
func (c *Client) Skip() (*SkipResponse, error) {
	var resp SkipResponse
	if err := c.client.Call("Stagehand.Skip", SkipRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StopShow clears the queue and returns to the default scene.
func (c *Client) StopShow() (*StopShowResponse, error) {
	var resp StopShowResponse
	if err := c.client.Call("Stagehand.StopShow", StopShowRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Play manually triggers the scene for the named product.
func (c *Client) Play(product string) (*PlayResponse, error) {
	var resp PlayResponse
	if err := c.client.Call("Stagehand.Play", PlayRequest{Product: product}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reload reloads the product catalog from the config file.
func (c *Client) Reload() (*ReloadResponse, error) {
	var resp ReloadResponse
	if err := c.client.Call("Stagehand.Reload", ReloadRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History retrieves recent scene switches, newest first.
func (c *Client) History(limit int) (*HistoryResponse, error) {
	var resp HistoryResponse
	if err := c.client.Call("Stagehand.History", HistoryRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HistorySummary retrieves per-product switch totals.
func (c *Client) HistorySummary() (*HistorySummaryResponse, error) {
	var resp HistorySummaryResponse
	if err := c.client.Call("Stagehand.HistorySummary", HistorySummaryRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns buffered log events from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Stagehand.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Stagehand.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
