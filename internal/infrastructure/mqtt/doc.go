// Package mqtt provides MQTT publishing for device lifecycle events.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - JSON message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// Topic layout, under the configured prefix (default "devreg"):
//
//	<prefix>/devices/<device_id>/created
//	<prefix>/devices/<device_id>/deleted
//	<prefix>/system/status                (retained online/offline)
//
// # Security Considerations
//
//   - Enable TLS (cfg.Broker.TLS=true) outside local development
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := client.Topics().DeviceEvent("dev-1", "created")
//	err = client.PublishJSON(topic, event)
package mqtt
