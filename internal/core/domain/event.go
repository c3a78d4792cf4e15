package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// AccessKeyEntityType is the entity type AWS Health uses for IAM access keys
// in AWS_RISK_CREDENTIALS_EXPOSED events.
const AccessKeyEntityType = "ACCESS_KEY"

var (
	// ErrMalformedEvent means the trigger has no detail.affectedEntities list.
	ErrMalformedEvent = errors.New("malformed event: missing detail.affectedEntities")

	// ErrNoAccessKeyEntity means no affected entity is an ACCESS_KEY with a value.
	ErrNoAccessKeyEntity = errors.New("no ACCESS_KEY entity in affected entities")
)

// TriggerEvent is the EventBridge envelope delivered for an AWS Health event.
// Detail is kept raw so that extraction decides what "malformed" means.
type TriggerEvent struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	DetailType string          `json:"detail-type"`
	Account    string          `json:"account"`
	Region     string          `json:"region"`
	Detail     json.RawMessage `json:"detail"`
}

type AffectedEntity struct {
	EntityType  string `json:"entityType"`
	EntityValue string `json:"entityValue"`
}

// HealthEventDetail is the subset of the AWS Health detail object we read.
// AffectedEntities is a pointer so an absent list can be told apart from an
// empty one.
type HealthEventDetail struct {
	EventTypeCode     string            `json:"eventTypeCode"`
	Service           string            `json:"service"`
	EventTypeCategory string            `json:"eventTypeCategory"`
	AffectedEntities  *[]AffectedEntity `json:"affectedEntities"`
}

// ParseTriggerEvent decodes a raw trigger payload.
func ParseTriggerEvent(raw []byte) (TriggerEvent, error) {
	var event TriggerEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return TriggerEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return event, nil
}

// ExtractAccessKeyID returns the exposed access key id carried by the event.
//
// Selection is strict: the first entity whose entityType is exactly
// ACCESS_KEY and whose entityValue is non-empty wins. Entities of any other
// type are never treated as the credential, even if they carry a value.
func ExtractAccessKeyID(event TriggerEvent) (string, error) {
	if len(event.Detail) == 0 {
		return "", ErrMalformedEvent
	}

	var detail *HealthEventDetail
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if detail == nil || detail.AffectedEntities == nil {
		return "", ErrMalformedEvent
	}

	for _, entity := range *detail.AffectedEntities {
		if entity.EntityType == AccessKeyEntityType && entity.EntityValue != "" {
			return entity.EntityValue, nil
		}
	}

	return "", ErrNoAccessKeyEntity
}
