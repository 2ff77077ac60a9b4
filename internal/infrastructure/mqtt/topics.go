package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when Topics.Prefix is empty.
const DefaultTopicPrefix = "devreg"

// Topics builds the registry's MQTT topics under a configurable prefix.
//
//	topics := mqtt.Topics{Prefix: "devreg"}
//	topics.DeviceEvent("dev-1", "created")
//	// Returns: "devreg/devices/dev-1/created"
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return strings.TrimSuffix(t.Prefix, "/")
}

// DeviceEvent returns the topic for a lifecycle event on one device.
//
// Example: devreg/devices/dev-1/deleted
func (t Topics) DeviceEvent(deviceID, event string) string {
	return fmt.Sprintf("%s/devices/%s/%s", t.prefix(), topicSegment(deviceID), event)
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: devreg/system/status
func (t Topics) SystemStatus() string {
	return t.prefix() + "/system/status"
}

// topicSegment makes an arbitrary device_id safe as a single topic level.
// Level separators and wildcards would otherwise change the topic structure.
func topicSegment(s string) string {
	if s == "" {
		return "_"
	}
	return strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(s)
}
