// Package kube connects the device service to the Kubernetes API server that
// stores Asset and CronTab custom resources.
//
// It provides:
//   - Connection setup from an explicit kubeconfig, the in-cluster service
//     account, or the default loading rules (in that order)
//   - Store, a resource.Store backed by the dynamic client, so no generated
//     clientsets are needed for the CRDs
//   - Error classification into resource.ErrNotFound, *resource.APIError and
//     resource.ErrTransport
//
// Store is stateless: one instance is shared by every request.
//
// # Usage
//
//	client, err := kube.Connect(cfg.Kubernetes, version)
//	store := kube.NewStore(client.Dynamic())
//	err = store.HealthCheck(ctx, resource.KindAsset, resource.KindCronTab)
package kube
