package resource

// ObservabilityModeNone is the default observability mode for data points and events.
const ObservabilityModeNone = "none"

// AssetSpec is the desired state of an Asset.
//
// Only AssetEndpointProfileURI is required by the CRD schema; everything else
// may be left at its zero value.
type AssetSpec struct {
	UUID                           string            `json:"uuid"`
	AssetType                      string            `json:"assetType"`
	Enabled                        bool              `json:"enabled"`
	ExternalAssetID                string            `json:"externalAssetId"`
	DisplayName                    string            `json:"displayName"`
	Description                    string            `json:"description"`
	AssetEndpointProfileURI        string            `json:"assetEndpointProfileUri"`
	Version                        int32             `json:"version"`
	Manufacturer                   string            `json:"manufacturer"`
	ManufacturerURI                string            `json:"manufacturerUri"`
	Model                          string            `json:"model"`
	ProductCode                    string            `json:"productCode"`
	HardwareRevision               string            `json:"hardwareRevision"`
	SoftwareRevision               string            `json:"softwareRevision"`
	DocumentationURI               string            `json:"documentationUri"`
	SerialNumber                   string            `json:"serialNumber"`
	Attributes                     map[string]string `json:"attributes"`
	DefaultDataPointsConfiguration string            `json:"defaultDataPointsConfiguration"`
	DefaultEventsConfiguration     string            `json:"defaultEventsConfiguration"`
	DataPoints                     []DataPoint       `json:"dataPoints"`
	Events                         []Event           `json:"events"`
	Status                         AssetStatus       `json:"status"`
}

// DataPoint describes one value the asset exposes.
type DataPoint struct {
	Name                   string `json:"name"`
	DataSource             string `json:"dataSource"`
	CapabilityID           string `json:"capabilityId"`
	ObservabilityMode      string `json:"observabilityMode"`
	DataPointConfiguration string `json:"dataPointConfiguration"`
}

// Event describes one notifier the asset exposes.
type Event struct {
	Name               string `json:"name"`
	EventNotifier      string `json:"eventNotifier"`
	CapabilityID       string `json:"capabilityId"`
	ObservabilityMode  string `json:"observabilityMode"`
	EventConfiguration string `json:"eventConfiguration"`
}

// AssetStatus is the status block embedded in the Asset spec.
type AssetStatus struct {
	Errors  []StatusError `json:"errors"`
	Version int32         `json:"version"`
}

// StatusError is a single coded error reported on an Asset.
type StatusError struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

// CronTabSpec is the desired state of a CronTab.
type CronTabSpec struct {
	CronSpec string `json:"cronSpec"`
	Image    string `json:"image"`
	Capacity int32  `json:"capacity"`
}
