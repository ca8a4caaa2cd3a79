package inventory

import "time"

// Status reflects the last known reachability of a gateway or sensor.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusUnknown Status = "unknown"
)

// ValidStatus reports whether s is a known status value.
func ValidStatus(s Status) bool {
	switch s {
	case StatusOnline, StatusOffline, StatusUnknown:
		return true
	}
	return false
}

// Protocol identifies the field bus or radio technology of a network.
type Protocol string

const (
	ProtocolZigbee  Protocol = "zigbee"
	ProtocolZWave   Protocol = "zwave"
	ProtocolLoRaWAN Protocol = "lorawan"
	ProtocolModbus  Protocol = "modbus"
	ProtocolBLE     Protocol = "ble"
)

// ValidProtocol reports whether p is a supported network protocol.
func ValidProtocol(p Protocol) bool {
	switch p {
	case ProtocolZigbee, ProtocolZWave, ProtocolLoRaWAN, ProtocolModbus, ProtocolBLE:
		return true
	}
	return false
}

// Gateway represents an edge box bridging one or more field networks to IP.
type Gateway struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	Address    string     `json:"address"`
	Location   *string    `json:"location,omitempty"`
	Status     Status     `json:"status"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Network represents a single radio or bus segment owned by a gateway.
type Network struct {
	ID        string    `json:"id"`
	GatewayID string    `json:"gateway_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Protocol  Protocol  `json:"protocol"`
	Channel   *int      `json:"channel,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sensor represents an individual measuring device on a network,
// identified by its factory serial number.
type Sensor struct {
	ID         string     `json:"id"`
	NetworkID  string     `json:"network_id"`
	Name       string     `json:"name"`
	Serial     string     `json:"serial"`
	Kind       string     `json:"kind"`
	Unit       *string    `json:"unit,omitempty"`
	Status     Status     `json:"status"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
