package inventory

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxNameLength   = 100
	maxSlugLength   = 50
	maxSerialLength = 64
	slugPattern     = `^[a-z0-9]+(?:-[a-z0-9]+)*$`
	serialPattern   = `^[A-Za-z0-9][A-Za-z0-9:_-]*$`
)

var (
	slugRegex   = regexp.MustCompile(slugPattern)
	serialRegex = regexp.MustCompile(serialPattern)
)

// ValidateName checks if an inventory name is valid.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateSlug checks if a slug format is valid.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("%w: slug cannot be empty", ErrInvalidSlug)
	}
	if len(slug) > maxSlugLength {
		return fmt.Errorf("%w: slug exceeds %d characters", ErrInvalidSlug, maxSlugLength)
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("%w: slug must be lowercase alphanumeric with hyphens", ErrInvalidSlug)
	}
	return nil
}

// ValidateSerial checks if a sensor serial number is acceptable.
func ValidateSerial(serial string) error {
	if serial == "" {
		return fmt.Errorf("%w: serial cannot be empty", ErrInvalidSerial)
	}
	if len(serial) > maxSerialLength {
		return fmt.Errorf("%w: serial exceeds %d characters", ErrInvalidSerial, maxSerialLength)
	}
	if !serialRegex.MatchString(serial) {
		return fmt.Errorf("%w: serial contains invalid characters", ErrInvalidSerial)
	}
	return nil
}

// ValidateGateway validates a Gateway before persistence.
func ValidateGateway(g *Gateway) error {
	if err := ValidateName(g.Name); err != nil {
		return err
	}
	return ValidateSlug(g.Slug)
}

// ValidateNetwork validates a Network before persistence.
func ValidateNetwork(n *Network) error {
	if err := ValidateName(n.Name); err != nil {
		return err
	}
	if err := ValidateSlug(n.Slug); err != nil {
		return err
	}
	if !ValidProtocol(n.Protocol) {
		return fmt.Errorf("%w: %q", ErrInvalidProtocol, n.Protocol)
	}
	return nil
}

// ValidateSensor validates a Sensor before persistence.
func ValidateSensor(s *Sensor) error {
	if err := ValidateName(s.Name); err != nil {
		return err
	}
	if err := ValidateSerial(s.Serial); err != nil {
		return err
	}
	if strings.TrimSpace(s.Kind) == "" {
		return fmt.Errorf("%w: kind cannot be empty", ErrInvalidKind)
	}
	return nil
}
