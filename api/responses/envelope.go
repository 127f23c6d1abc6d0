package responses

// SuccessEnvelope wraps every 2xx body: `{"data": ...}`.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorBody carries a settlement error code such as INSUFFICIENT_QUANTITY or
// INVALID_TRANSITION. Details are only set for codes whose metadata allows them.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}
