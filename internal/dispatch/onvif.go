package dispatch

import (
	"context"
	"strings"

	"github.com/nerrad567/deviceservice/internal/credential"
	"github.com/nerrad567/deviceservice/internal/infrastructure/logging"
	"github.com/nerrad567/deviceservice/internal/resource"
)

// ProtocolONVIF is the wire name of the ONVIF camera discovery protocol.
const ProtocolONVIF = "onvif"

// ReasonAdd is the change reason reported for a newly discovered device.
const ReasonAdd = "add"

// CredentialResolver looks up stored device credentials.
// Implemented by *credential.Resolver.
type CredentialResolver interface {
	Resolve(ctx context.Context, deviceID string) (*credential.Credential, error)
}

// ONVIF answers the ONVIF discovery agent. It never accepts queries; it
// serves credentials from the resolver and provisions an Asset for every
// added camera.
type ONVIF struct {
	Unsupported

	assets         AssetReconciler
	credentials    CredentialResolver
	assetNamespace string
	logger         *logging.Logger
}

var _ Protocol = (*ONVIF)(nil)

// NewONVIF creates the onvif strategy.
//
// Parameters:
//   - assets: Reconciles the Asset for added devices
//   - credentials: Resolves device credentials
//   - assetNamespace: Namespace Assets are created in
//   - logger: Logger, nil for the default
func NewONVIF(assets AssetReconciler, credentials CredentialResolver, assetNamespace string, logger *logging.Logger) *ONVIF {
	if logger == nil {
		logger = logging.Default()
	}
	return &ONVIF{
		assets:         assets,
		credentials:    credentials,
		assetNamespace: assetNamespace,
		logger:         logger.With("protocol", ProtocolONVIF),
	}
}

// QueryCredential mirrors the resolver: a found credential succeeds, a
// missing one or a failed lookup fails.
func (p *ONVIF) QueryCredential(ctx context.Context, deviceID string) CredentialResponse {
	cred, err := p.credentials.Resolve(ctx, deviceID)
	if err != nil {
		p.logger.Warn("credential lookup aborted", "device_id", deviceID, "error", err)
		return CredentialFail()
	}
	if cred == nil {
		return CredentialFail()
	}
	return CredentialSuccess(cred.Fields())
}

// DeviceChange provisions an Asset when a device is added. Every other
// reason fails.
func (p *ONVIF) DeviceChange(ctx context.Context, reason string, device Device) ChangeResponse {
	if reason != ReasonAdd {
		return ChangeFail()
	}

	name, err := p.assets.ReconcileAsset(ctx, p.assetNamespace, strings.ToLower(device.ID), DefaultAssetSpec())
	if err != nil {
		p.logger.Warn("asset provisioning failed", "device_id", device.ID, "error", err)
		return ChangeFail()
	}

	p.logger.Debug("asset provisioned", "device_id", device.ID, "asset", name)
	return ChangeSuccess(device)
}

// DefaultAssetSpec is the spec given to every newly discovered camera.
func DefaultAssetSpec() resource.AssetSpec {
	return resource.AssetSpec{
		DisplayName:             "onvif-device-display-name",
		AssetEndpointProfileURI: "onvif-endpoint-profile-uri",
		Attributes:              map[string]string{},
		DataPoints: []resource.DataPoint{{
			Name:                   "data point name",
			DataSource:             "ns=3;s=FastUInt100",
			CapabilityID:           "capability id",
			ObservabilityMode:      resource.ObservabilityModeNone,
			DataPointConfiguration: "{}",
		}},
		Events: []resource.Event{},
	}
}
