package bridge

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
)

// CallRequest is the inbound wire envelope: one capability invocation from
// script content. Created by the facade, consumed exactly once by the
// dispatcher.
type CallRequest struct {
	CorrelationID string                `json:"correlationId"`
	Capability    entity.CapabilityName `json:"capability"`
	Arguments     json.RawMessage       `json:"arguments,omitempty"`
}

// CallError is the failure half of a call outcome.
type CallError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// CallResult is the outbound wire envelope: exactly one per CallRequest.
type CallResult struct {
	CorrelationID string     `json:"correlationId"`
	OK            bool       `json:"ok"`
	Value         any        `json:"value,omitempty"`
	Error         *CallError `json:"error,omitempty"`
}

// SubscriptionEvent is one delivery from a watch-style capability.
type SubscriptionEvent struct {
	SubscriptionID string `json:"subscriptionId"`
	Payload        any    `json:"payload"`
}

// SuccessResult builds a success outcome for a correlation id.
func SuccessResult(correlationID string, value any) CallResult {
	return CallResult{CorrelationID: correlationID, OK: true, Value: value}
}

// FailureResult builds a failure outcome for a correlation id, classifying
// err via KindOf.
func FailureResult(correlationID string, err error) CallResult {
	msg := ""
	var be *Error
	if errors.As(err, &be) {
		msg = be.Message
	} else if err != nil {
		msg = err.Error()
	}
	return CallResult{
		CorrelationID: correlationID,
		OK:            false,
		Error:         &CallError{Kind: KindOf(err), Message: msg},
	}
}

// ResultSink receives correlated results and subscription events for delivery
// back across the trust boundary.
type ResultSink interface {
	DeliverResult(ctx context.Context, result CallResult)
	DeliverEvent(ctx context.Context, event SubscriptionEvent)
}

// ParseCallRequest decodes an inbound script message payload.
func ParseCallRequest(payload []byte) (CallRequest, error) {
	var req CallRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return CallRequest{}, err
	}
	if req.CorrelationID == "" {
		return CallRequest{}, errors.New("call request missing correlationId")
	}
	if req.Capability == "" {
		return CallRequest{}, errors.New("call request missing capability")
	}
	return req, nil
}
