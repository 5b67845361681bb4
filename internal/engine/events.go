package engine

// Inbound event names.
const (
	EventJoinLocation = "join-location"
	EventReportHazard = "report-hazard"
	EventVerifyHazard = "verify-hazard"
	EventDeleteHazard = "delete-hazard"
)

// Outbound event names.
const (
	EventNewHazard     = "new-hazard"
	EventHazardUpdated = "hazard-updated"
	EventHazardDeleted = "hazard-deleted"
	EventError         = "error"
)

// Coordinates use pointers so that a missing field is distinguishable from a
// legitimate zero: (0, 0) is a valid location.

type joinLocationPayload struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type locationPayload struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type reportHazardPayload struct {
	Type     string           `json:"type"`
	Location *locationPayload `json:"location"`
	UserID   string           `json:"userId"`
}

type verifyHazardPayload struct {
	HazardID string `json:"hazardId"`
	UserID   string `json:"userId"`
}

type deleteHazardPayload struct {
	HazardID string `json:"hazardId"`
	UserID   string `json:"userId"`
}

// Wire shapes for outbound events.

type locationView struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type newHazardView struct {
	ID        string       `json:"id"`
	Type      string       `json:"type"`
	Location  locationView `json:"location"`
	Verifiers []string     `json:"verifiers"`
}

type hazardRecordView struct {
	ID         string       `json:"id"`
	Type       string       `json:"type"`
	Location   locationView `json:"location"`
	ReporterID string       `json:"reporterId"`
	Verifiers  []string     `json:"verifiers"`
	CreatedAt  string       `json:"createdAt"`
}

type hazardDeletedView struct {
	HazardID string `json:"hazardId"`
}

type errorView struct {
	Message string `json:"message"`
}
