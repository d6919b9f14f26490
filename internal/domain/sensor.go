package domain

import "fmt"

// Sensor states
const (
	StateOnline = "Online"
	StateError  = "error"
)

// UnreachableState returns the state reported when host cannot be contacted
func UnreachableState(host string) string {
	return fmt.Sprintf("%s cannot be reached", host)
}

// SensorSnapshot is what the host exposes for one sensor
type SensorSnapshot struct {
	EntityID     string     `json:"entity_id"`
	Name         string     `json:"name"`
	FriendlyName string     `json:"friendly_name"`
	State        string     `json:"state"`
	Attributes   Attributes `json:"attributes"`
}
