package health

import (
	"context"
	"fmt"

	"mibhub/pkg/models"
)

// BackendCheck reports the backend state tracked by a watcher.
func BackendCheck(status func() models.BackendStatus) ServiceCheck {
	return func(context.Context) models.ServiceStatus {
		st := status()
		switch {
		case !st.Configured:
			return models.ServiceStatus{Name: "backend", Status: StatusDisabled, Message: "BACKEND_URL not set"}
		case !st.Online:
			return models.ServiceStatus{Name: "backend", Status: StatusDown, Message: st.LastError}
		case st.LastError != "":
			return models.ServiceStatus{Name: "backend", Status: StatusDegraded, Message: st.LastError}
		default:
			return models.ServiceStatus{
				Name:    "backend",
				Status:  StatusUp,
				Message: fmt.Sprintf("%s (%dms)", st.URL, st.Latency),
			}
		}
	}
}

// PingCheck wraps a ping function such as (*sql.DB).PingContext.
func PingCheck(name string, ping func(ctx context.Context) error) ServiceCheck {
	return func(ctx context.Context) models.ServiceStatus {
		if err := ping(ctx); err != nil {
			return models.ServiceStatus{Name: name, Status: StatusDown, Message: err.Error()}
		}
		return models.ServiceStatus{Name: name, Status: StatusUp}
	}
}
