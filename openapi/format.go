package openapi

import "regexp"

// These mirror the literal format regexes from spec §6. They are
// registered with the JSON-Schema compiler as custom format assertions so
// that "format: email" etc. is enforced with these exact patterns instead
// of whatever defaults santhosh-tekuri/jsonschema ships with.
var (
	dateRegex     = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})$`)
	dateTimeRegex = regexp.MustCompile(`^((?:(\d{4}-\d{2}-\d{2})T(\d{2}:\d{2}:\d{2}(?:\.\d+)?))(Z|[\+-]\d{2}:\d{2})?)$`)
	emailRegex    = regexp.MustCompile(`^[\w-\.]+@([\w-]+\.)+[\w-]{2,4}$`)
	ipv4Regex     = regexp.MustCompile(`^((?:[0-9]{1,3}\.){3}[0-9]{1,3})$`)
	ipv6Regex     = regexp.MustCompile(`^((?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4})$`)
	uuidRegex     = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

func formatRegex(name string) *regexp.Regexp {
	switch name {
	case "date":
		return dateRegex
	case "date-time":
		return dateTimeRegex
	case "email":
		return emailRegex
	case "ipv4":
		return ipv4Regex
	case "ipv6":
		return ipv6Regex
	case "uuid":
		return uuidRegex
	default:
		return nil
	}
}
