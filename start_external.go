//go:build !ios

package crashpad

// startPlatform starts the external handler process on platforms with
// an out-of-process handler topology.
func (c *Client) startPlatform(cfg Config, annotations map[string]string) error {
	handlerPath, err := cfg.handlerPath()
	if err != nil {
		return err
	}
	return c.StartHandler(handlerPath, cfg.DatabasePath, cfg.MetricsPath, cfg.URL, annotations)
}
