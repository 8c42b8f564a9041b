package types

// SuccessEnvelope wraps every 2xx JSON body the API returns.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError carries a stable machine code plus an operator-facing message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
