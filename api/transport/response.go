package transport

import "encoding/json"

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// RecordRef names a changed record.
type RecordRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// DragResponse describes how a drag was resolved.
type DragResponse struct {
	Status    string      `json:"status"`
	Operation string      `json:"operation"`
	Changed   []RecordRef `json:"changed"`
	// Pending is true while the write is still in flight.
	Pending bool `json:"pending"`
}

// NewAccepted reports a change that took effect in memory but could not be stored.
func NewAccepted(data interface{}, code string, err interface{}) Envelope {
	return Envelope{
		Status: "accepted",
		Code:   code,
		Data:   data,
		Error:  err,
	}
}
