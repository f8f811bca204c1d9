package dispatch

import (
	"context"
	"strings"

	"github.com/nerrad567/deviceservice/internal/infrastructure/logging"
	"github.com/nerrad567/deviceservice/internal/resource"
)

// ProtocolDebugEcho is the wire name of the test-harness protocol.
const ProtocolDebugEcho = "debugEcho"

// debugEchoCredentialID is the only device debugEcho has credentials for.
const debugEchoCredentialID = "foo0"

// cronJob is the CronTab provisioned by a debugEcho query rule.
type cronJob struct {
	namespace string
	spec      resource.CronTabSpec
	// acceptOnSuccess answers accept when the reconcile succeeds. When
	// false the query is rejected whatever the outcome.
	acceptOnSuccess bool
}

var (
	cronNoInstance = cronJob{
		namespace: "newcr-no-instance",
		spec: resource.CronTabSpec{
			CronSpec: "* * */3",
			Image:    "newcr-no-instance_cron_image",
			Capacity: 1,
		},
	}

	cronWithInstance = cronJob{
		namespace: "newcr-with-instance",
		spec: resource.CronTabSpec{
			CronSpec: "* * * */4",
			Image:    "newcr-with-instance_cron_image",
			Capacity: 1,
		},
		acceptOnSuccess: true,
	}
)

// queryRule answers queries for identifiers starting with prefix.
type queryRule struct {
	prefix string
	decide func(ctx context.Context, deviceID string) QueryResponse
}

// DebugEcho answers the test harness with canned decisions chosen by
// identifier prefix. Some prefixes provision a CronTab on the way.
type DebugEcho struct {
	crontabs CronTabReconciler
	logger   *logging.Logger
	rules    []queryRule
}

var _ Protocol = (*DebugEcho)(nil)

// NewDebugEcho creates the debugEcho strategy.
func NewDebugEcho(crontabs CronTabReconciler, logger *logging.Logger) *DebugEcho {
	if logger == nil {
		logger = logging.Default()
	}
	p := &DebugEcho{
		crontabs: crontabs,
		logger:   logger.With("protocol", ProtocolDebugEcho),
	}

	// Evaluated in order; the first matching prefix wins.
	p.rules = []queryRule{
		{prefix: "provision-good", decide: p.provisionGood},
		{prefix: "provision-bad", decide: func(context.Context, string) QueryResponse { return Reject() }},
		{prefix: "newcr-no-instance", decide: p.provisionCronTab(cronNoInstance)},
		{prefix: "newcr-with-instance", decide: p.provisionCronTab(cronWithInstance)},
	}
	return p
}

// QueryDevice applies the first rule whose prefix matches deviceID and
// accepts anything no rule matches.
func (p *DebugEcho) QueryDevice(ctx context.Context, deviceID string) QueryResponse {
	for _, rule := range p.rules {
		if strings.HasPrefix(deviceID, rule.prefix) {
			return rule.decide(ctx, deviceID)
		}
	}
	return Accept(nil)
}

// QueryCredential returns a fixed credential for foo0 and fails for
// every other device.
func (p *DebugEcho) QueryCredential(_ context.Context, deviceID string) CredentialResponse {
	if deviceID != debugEchoCredentialID {
		return CredentialFail()
	}
	return CredentialSuccess(map[string]string{
		"username": "debugEchoUser1",
		"password": "debugEchoPassword1",
	})
}

// DeviceChange is not supported by debugEcho.
func (p *DebugEcho) DeviceChange(context.Context, string, Device) ChangeResponse {
	return ChangeFail()
}

func (p *DebugEcho) provisionGood(_ context.Context, deviceID string) QueryResponse {
	return Accept(map[string]string{
		"COMBINED_ID": ProtocolDebugEcho + "-" + deviceID,
		"EXTRA_INFO":  "extra-info-" + deviceID,
	})
}

func (p *DebugEcho) provisionCronTab(job cronJob) func(context.Context, string) QueryResponse {
	return func(ctx context.Context, deviceID string) QueryResponse {
		err := p.crontabs.ReconcileCronTab(ctx, job.namespace, strings.ToLower(deviceID), job.spec)
		if err != nil {
			p.logger.Warn("crontab provisioning failed",
				"device_id", deviceID,
				"namespace", job.namespace,
				"error", err,
			)
		}
		if job.acceptOnSuccess && err == nil {
			return Accept(nil)
		}
		return Reject()
	}
}
