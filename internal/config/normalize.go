package config

import "strings"

// normalize expands path fields, trims whitespace, and backfills zero values
// with repository defaults so the rest of the code never rechecks them.
func (c *Config) normalize() error {
	var err error
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return err
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return err
	}
	if c.Paths.Socket, err = expandPath(strings.TrimSpace(c.Paths.Socket)); err != nil {
		return err
	}
	if c.Chat.ScriptPath, err = expandPath(strings.TrimSpace(c.Chat.ScriptPath)); err != nil {
		return err
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Chat.Username = strings.TrimSpace(c.Chat.Username)
	c.Classifier.APIKey = strings.TrimSpace(c.Classifier.APIKey)
	c.Classifier.BaseURL = strings.TrimRight(strings.TrimSpace(c.Classifier.BaseURL), "/")
	c.Classifier.Model = strings.TrimSpace(c.Classifier.Model)
	c.Display.DefaultScene = strings.TrimSpace(c.Display.DefaultScene)
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Engine.QueueOverflowPolicy = strings.ToLower(strings.TrimSpace(c.Engine.QueueOverflowPolicy))

	if c.Classifier.BaseURL == "" {
		c.Classifier.BaseURL = defaultClassifierURL
	}
	if c.Classifier.Model == "" {
		c.Classifier.Model = defaultModel
	}
	if c.Classifier.TimeoutSeconds <= 0 {
		c.Classifier.TimeoutSeconds = defaultTimeout
	}
	if c.Chat.ReconnectDelay <= 0 {
		c.Chat.ReconnectDelay = defaultReconnect
	}
	if c.Display.DefaultScene == "" {
		c.Display.DefaultScene = defaultDefaultScene
	}
	if c.Display.PlaybackSeconds <= 0 {
		c.Display.PlaybackSeconds = defaultPlayback
	}
	if c.Engine.ConfidenceThreshold == 0 {
		c.Engine.ConfidenceThreshold = defaultConfidenceThreshold
	}
	if c.Engine.CacheTTLSeconds <= 0 {
		c.Engine.CacheTTLSeconds = defaultCacheTTLSeconds
	}
	if c.Engine.RateLimitWindowSeconds <= 0 {
		c.Engine.RateLimitWindowSeconds = defaultRateWindowSeconds
	}
	if c.Engine.RateLimitMax <= 0 {
		c.Engine.RateLimitMax = defaultRateMax
	}
	if c.Engine.QueueBound <= 0 {
		c.Engine.QueueBound = defaultQueueBound
	}
	if c.Engine.QueueOverflowPolicy == "" {
		c.Engine.QueueOverflowPolicy = OverflowDropNewest
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = 10
	}

	for i := range c.Products {
		c.Products[i].Name = strings.TrimSpace(c.Products[i].Name)
		c.Products[i].Scene = strings.TrimSpace(c.Products[i].Scene)
		c.Products[i].Description = strings.TrimSpace(c.Products[i].Description)
	}
	return nil
}
