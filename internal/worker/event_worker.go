package worker

import (
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StartEventRecorder registers the recorder's handlers on its dispatcher.
func StartEventRecorder(recorder *service.EventRecorder) {
	if recorder == nil {
		return
	}
	recorder.RegisterHandlers()
}
