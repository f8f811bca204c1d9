package mqtt

import "strings"

// TopicPrefix is the root of every topic the service publishes.
const TopicPrefix = "deviceservice"

// Topics builds the service's MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.ReconcileEvent("CronTab", "newcr-with-instance", "cam-1")
//	// "deviceservice/events/crontab/newcr-with-instance/cam-1"
type Topics struct{}

// SystemStatus is the retained online/offline status topic.
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}

// ReconcileEvent is the topic for outcomes on one object. The kind is
// lower-cased; namespace and name are used as given since Kubernetes names
// never contain MQTT wildcards or separators.
func (Topics) ReconcileEvent(kind, namespace, name string) string {
	return TopicPrefix + "/events/" + strings.ToLower(kind) + "/" + namespace + "/" + name
}

// AllReconcileEvents matches every reconcile event topic.
func (Topics) AllReconcileEvents() string {
	return TopicPrefix + "/events/#"
}
