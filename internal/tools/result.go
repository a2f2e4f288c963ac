package tools

const (
	StatusSuccess = "success"
	StatusSent    = "sent"
	StatusError   = "error"
)

// Result is the structured reply returned to the calling agent. Only the
// fields relevant to the tool and outcome are populated.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
	SMS     string `json:"sms,omitempty"`
	SID     string `json:"sid,omitempty"`
}

// ErrorResult converts err into a failure result.
func ErrorResult(err error) Result {
	return Result{Status: StatusError, Message: err.Error()}
}

// OK reports whether the tool completed its side effect.
func (r Result) OK() bool {
	return r.Status == StatusSuccess || r.Status == StatusSent
}
