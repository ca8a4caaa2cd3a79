package inventory

import "errors"

var (
	// ErrGatewayNotFound is returned when a gateway ID does not exist.
	ErrGatewayNotFound = errors.New("gateway not found")

	// ErrGatewayHasNetworks is returned when trying to delete a gateway
	// that still has networks.
	ErrGatewayHasNetworks = errors.New("gateway has networks: delete networks first")

	// ErrNetworkNotFound is returned when a network ID does not exist.
	ErrNetworkNotFound = errors.New("network not found")

	// ErrNetworkHasSensors is returned when trying to delete a network
	// that still has sensors.
	ErrNetworkHasSensors = errors.New("network has sensors: delete sensors first")

	// ErrSensorNotFound is returned when a sensor ID does not exist.
	ErrSensorNotFound = errors.New("sensor not found")

	// ErrSlugExists is returned when a gateway or network slug is already taken.
	ErrSlugExists = errors.New("slug already exists")

	// ErrSerialExists is returned when a sensor serial is already registered.
	ErrSerialExists = errors.New("serial already registered")

	// ErrInvalidName is returned when a name fails validation.
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidSlug is returned when a slug fails validation.
	ErrInvalidSlug = errors.New("invalid slug")

	// ErrInvalidProtocol is returned for a protocol outside the supported set.
	ErrInvalidProtocol = errors.New("invalid protocol")

	// ErrInvalidSerial is returned when a sensor serial fails validation.
	ErrInvalidSerial = errors.New("invalid serial")

	// ErrInvalidKind is returned when a sensor kind is empty.
	ErrInvalidKind = errors.New("invalid kind")
)
