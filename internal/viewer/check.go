package viewer

// Check is one server-side submission rule result.
// Limit and Value keep whatever shape the server sent.
type Check struct {
	Name   string      `json:"name"`
	Result string      `json:"result"`
	Limit  interface{} `json:"limit"`
	Value  interface{} `json:"value"`
}

// CheckPayload is the body of POST /alphas/{id}/submit.
type CheckPayload struct {
	Detail string `json:"detail"`
	Is     struct {
		Checks []Check `json:"checks"`
	} `json:"is"`
}

type FailReason struct {
	Name  string      `json:"name"`
	Limit interface{} `json:"limit"`
	Value interface{} `json:"value"`
}
