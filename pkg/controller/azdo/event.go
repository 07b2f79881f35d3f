package azdo

import (
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/domain/model"
)

// serviceHookPayload is the subset of an Azure DevOps service hook notification used here
type serviceHookPayload struct {
	ID        string `json:"id"`
	EventType string `json:"eventType"`
	Resource  struct {
		BuildNumber string `json:"buildNumber"`
		Result      string `json:"result"`
		Definition  struct {
			Name string `json:"name"`
		} `json:"definition"`
	} `json:"resource"`
}

// ParseBuildEvent converts a service hook notification body into a BuildEvent
func ParseBuildEvent(body []byte) (*model.BuildEvent, error) {
	var payload serviceHookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, goerr.Wrap(err, "failed to parse service hook payload")
	}

	if payload.EventType == "" {
		return nil, goerr.New("missing eventType in service hook payload", goerr.V("id", payload.ID))
	}

	return &model.BuildEvent{
		ID:          payload.ID,
		EventType:   payload.EventType,
		Pipeline:    payload.Resource.Definition.Name,
		BuildNumber: payload.Resource.BuildNumber,
		Result:      payload.Resource.Result,
		ReceivedAt:  time.Now(),
	}, nil
}
