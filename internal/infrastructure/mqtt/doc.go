// Package mqtt publishes device service lifecycle events to an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS validation and a payload size cap
//   - Last Will and Testament so consumers see the service go offline
//   - Reconcile outcome events for downstream consumers
//
// # Topics
//
//	deviceservice/system/status                        retained online/offline status
//	deviceservice/events/{kind}/{namespace}/{name}     one message per reconciliation
//
// # Security Considerations
//
//   - Enable TLS (cfg.Broker.TLS) outside local development
//   - Credentials come from config or DEVICESERVICE_MQTT_USERNAME/PASSWORD
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	publisher := mqtt.NewEventPublisher(client, byte(cfg.MQTT.QoS), logger)
//	reconciler := reconcile.New(store, digester, logger, publisher)
package mqtt
