package constant

const (
	AuthUri       = "/authentication"
	AlphasUri     = "/alphas"
	DataSetsUri   = "/data-sets"
	UserSelfUri   = "/users/self"
	SubmitUri     = "/submit"
	RecordSetsUri = "/recordsets"
)

const (
	CheckAlreadySubmitted = "ALREADY_SUBMITTED"
	CheckResultFail       = "FAIL"
	CheckResultPass       = "PASS"
)

const (
	StatusError    = "ERROR"
	StatusComplete = "COMPLETE"
	StatusWarning  = "WARNING"
	StatusPending  = "PENDING"
)

const ListPageSize = 100

const (
	DatasetLimit  = 50
	OperatorLimit = 100
)
