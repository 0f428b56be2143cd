package viewer

import "encoding/json"

// Alpha is the API-shaped record returned by the Brain platform.
// The client never mutates it, only projects fields.
type Alpha struct {
	Id       string          `json:"id"`
	Type     string          `json:"type"`
	Status   string          `json:"status"`
	Regular  json.RawMessage `json:"regular"`
	Settings json.RawMessage `json:"settings"`
	Is       Performance     `json:"is"`
}

type Performance struct {
	Fitness    *float64 `json:"fitness"`
	Sharpe     *float64 `json:"sharpe"`
	Turnover   *float64 `json:"turnover"`
	Returns    *float64 `json:"returns"`
	Margin     *float64 `json:"margin"`
	LongCount  *int64   `json:"longCount"`
	ShortCount *int64   `json:"shortCount"`
}

type SimulationSettings struct {
	InstrumentType string  `json:"instrumentType"`
	Region         string  `json:"region"`
	Universe       string  `json:"universe"`
	Delay          int64   `json:"delay"`
	Decay          int64   `json:"decay"`
	Neutralization string  `json:"neutralization"`
	Truncation     float64 `json:"truncation"`
	Pasteurization string  `json:"pasteurization"`
	UnitHandling   string  `json:"unitHandling"`
	NanHandling    string  `json:"nanHandling"`
	Language       string  `json:"language"`
	Visualization  bool    `json:"visualization"`
}
