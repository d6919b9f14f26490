package jellyfin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/domain"
)

// SystemInfo is the unauthenticated /System/Info/Public response
type SystemInfo struct {
	ProductName string `json:"ProductName"`
	ServerName  string `json:"ServerName"`
	Version     string `json:"Version"`
	ID          string `json:"Id"`
}

// SystemInfo probes the server and confirms it is Jellyfin.
func (c *Client) SystemInfo(ctx context.Context) (SystemInfo, error) {
	body, err := c.doRequest(ctx, "/System/Info/Public", nil)
	if err != nil {
		return SystemInfo{}, err
	}

	var info SystemInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return SystemInfo{}, fmt.Errorf("failed to parse system info: %w: %v", domain.ErrBadResponse, err)
	}

	// Emby answers the same endpoint
	if !strings.Contains(strings.ToLower(info.ProductName), "jellyfin") {
		return info, fmt.Errorf("not a Jellyfin server (ProductName: %q)", info.ProductName)
	}

	c.setStatus(domain.StateOnline)
	return info, nil
}
