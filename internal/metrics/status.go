// Package metrics holds the Prometheus collectors of the service and small recorders injected into components.
package metrics

const namespace = "beaverfarm"

const (
	statusSuccess = "success"
	statusError   = "error"
	statusSkipped = "skipped"
)

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusSuccess
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
