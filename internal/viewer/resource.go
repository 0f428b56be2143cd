package viewer

import "encoding/json"

type Operator struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type Profile struct {
	Username           string      `json:"username"`
	Rank               interface{} `json:"rank"`
	CanSubmitRegular   bool        `json:"can_submit_regular"`
	CanSubmitPowerPool bool        `json:"can_submit_power_pool"`
}

// Resources is what the UI gets from /api/get-resources.
type Resources struct {
	Datasets    []json.RawMessage `json:"datasets"`
	Operators   []Operator        `json:"operators"`
	UserProfile Profile           `json:"user_profile"`
	Instruments []string          `json:"instruments"`
	Regions     []string          `json:"regions"`
	Delays      []int64           `json:"delays"`
}
