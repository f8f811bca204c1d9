package dispatch

// Query results.
const (
	ResultAccept = "accept"
	ResultReject = "reject"
)

// Credential and change results.
const (
	ResultSuccess = "success"
	ResultFail    = "fail"
)

// CredentialTypeUsernamePassword tags username/password credentials.
const CredentialTypeUsernamePassword = "username-password"

// QueryRequest asks whether a discovered device should be accepted.
type QueryRequest struct {
	ID       string `json:"id"`
	Protocol string `json:"protocol"`
}

// QueryResponse answers a QueryRequest. Properties are handed back to the
// adapter and attached to the device.
type QueryResponse struct {
	Result     string            `json:"result"`
	Properties map[string]string `json:"properties"`
}

// CredentialRequest asks for the credentials of a device.
type CredentialRequest struct {
	Protocol string          `json:"protocol"`
	Data     CredentialInput `json:"data"`
}

// CredentialInput identifies the device in a CredentialRequest.
type CredentialInput struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

// CredentialResponse answers a CredentialRequest.
type CredentialResponse struct {
	Result         string            `json:"result"`
	CredentialType string            `json:"credentialType"`
	Credentials    map[string]string `json:"credentials"`
}

// ChangeRequest reports a device lifecycle change.
type ChangeRequest struct {
	Protocol string      `json:"protocol"`
	Data     ChangeInput `json:"data"`
}

// ChangeInput carries the reason and the device a ChangeRequest is about.
type ChangeInput struct {
	Reason string `json:"reason"`
	Device Device `json:"device"`
}

// ChangeResponse answers a ChangeRequest.
type ChangeResponse struct {
	Result string `json:"result"`
	Device Device `json:"device"`
}

// Device is a discovered device as reported by an adapter.
type Device struct {
	ID          string            `json:"id"`
	Properties  map[string]string `json:"properties"`
	Mounts      []Mount           `json:"mounts"`
	DeviceSpecs []DeviceSpec      `json:"deviceSpecs"`
}

// Mount is a host volume to mount into containers using the device.
type Mount struct {
	ContainerPath string `json:"containerPath"`
	HostPath      string `json:"hostPath"`
	ReadOnly      bool   `json:"readOnly"`
}

// DeviceSpec is a host device node to expose to containers.
// Permissions is any combination of r, w and m.
type DeviceSpec struct {
	ContainerPath string `json:"containerPath"`
	HostPath      string `json:"hostPath"`
	Permissions   string `json:"permissions"`
}

// normalized returns d with nil collections replaced by empty ones so the
// wire form always carries {} and [] rather than null.
func (d Device) normalized() Device {
	if d.Properties == nil {
		d.Properties = map[string]string{}
	}
	if d.Mounts == nil {
		d.Mounts = []Mount{}
	}
	if d.DeviceSpecs == nil {
		d.DeviceSpecs = []DeviceSpec{}
	}
	return d
}

// Reject returns a reject response with no properties.
func Reject() QueryResponse {
	return QueryResponse{Result: ResultReject, Properties: map[string]string{}}
}

// Accept returns an accept response carrying properties.
func Accept(properties map[string]string) QueryResponse {
	if properties == nil {
		properties = map[string]string{}
	}
	return QueryResponse{Result: ResultAccept, Properties: properties}
}

// CredentialFail returns a failed credential response.
func CredentialFail() CredentialResponse {
	return CredentialResponse{Result: ResultFail, Credentials: map[string]string{}}
}

// CredentialSuccess returns a username/password credential response.
func CredentialSuccess(fields map[string]string) CredentialResponse {
	return CredentialResponse{
		Result:         ResultSuccess,
		CredentialType: CredentialTypeUsernamePassword,
		Credentials:    fields,
	}
}

// ChangeFail returns a failed change response with an empty device.
func ChangeFail() ChangeResponse {
	return ChangeResponse{Result: ResultFail, Device: Device{}.normalized()}
}

// ChangeSuccess returns a successful change response echoing device.
func ChangeSuccess(device Device) ChangeResponse {
	return ChangeResponse{Result: ResultSuccess, Device: device.normalized()}
}
