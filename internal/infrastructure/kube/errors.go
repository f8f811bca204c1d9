package kube

import (
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/nerrad567/deviceservice/internal/resource"
)

// classify maps a client-go error onto the resource error taxonomy.
//
//   - 404 responses become resource.ErrNotFound
//   - any other response carrying a metav1.Status becomes *resource.APIError
//   - everything else (dial failures, timeouts, cancelled contexts) is
//     wrapped in resource.ErrTransport
func classify(err error) error {
	if err == nil {
		return nil
	}

	if apierrors.IsNotFound(err) {
		return fmt.Errorf("%w: %s", resource.ErrNotFound, err.Error())
	}

	var status apierrors.APIStatus
	if errors.As(err, &status) {
		s := status.Status()
		return &resource.APIError{
			Code:    s.Code,
			Reason:  string(s.Reason),
			Message: s.Message,
		}
	}

	return fmt.Errorf("%w: %w", resource.ErrTransport, err)
}
