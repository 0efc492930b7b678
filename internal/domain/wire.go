package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// WireCell is the JSON shape of one visible cell as reported by a device.
// LTE cells use ci/tac, GSM and WCDMA cells use cid/lac. Operator codes are
// sent either as mcc_string/mnc_string or as legacy integers mcc/mnc.
type WireCell struct {
	Type       string  `json:"type" validate:"required"`
	Registered bool    `json:"registered"`
	CI         *uint64 `json:"ci,omitempty"`
	TAC        *uint32 `json:"tac,omitempty"`
	CID        *uint64 `json:"cid,omitempty"`
	LAC        *uint32 `json:"lac,omitempty"`
	MCCString  *string `json:"mcc_string,omitempty"`
	MNCString  *string `json:"mnc_string,omitempty"`
	MCC        *int    `json:"mcc,omitempty"`
	MNC        *int    `json:"mnc,omitempty"`
}

// CellSnapshot is the payload a device publishes: every cell it could see
// at ObservedAt.
type CellSnapshot struct {
	DeviceID   string     `json:"device_id" validate:"required,max=128"`
	ObservedAt time.Time  `json:"observed_at,omitzero"`
	Cells      []WireCell `json:"cells" validate:"dive"`
}

// InvalidSnapshotError reports a payload that could not be decoded into
// observations.
type InvalidSnapshotError struct {
	Reason string
	Err    error
}

func (e *InvalidSnapshotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid cell snapshot: %s: %v", e.Reason, e.Err)
	}
	return "invalid cell snapshot: " + e.Reason
}

func (e *InvalidSnapshotError) Unwrap() error { return e.Err }

// ParseRawMessage decodes a source message into a snapshot and its
// observations. A snapshot without observed_at takes the message timestamp.
func ParseRawMessage(raw RawMessage) (CellSnapshot, ObservationSet, error) {
	var snap CellSnapshot
	if err := json.Unmarshal(raw.Value, &snap); err != nil {
		return CellSnapshot{}, nil, &InvalidSnapshotError{Reason: "parse raw message", Err: err}
	}
	if err := validate.Struct(snap); err != nil {
		return CellSnapshot{}, nil, &InvalidSnapshotError{Reason: "validate snapshot", Err: err}
	}
	if snap.ObservedAt.IsZero() {
		snap.ObservedAt = raw.Timestamp
	}

	return snap, DecodeObservations(snap.Cells), nil
}

// DecodeObservations converts wire cells into observations, keeping order.
// Malformed cells are kept as IncompleteObservation so that a bad neighbor
// never hides a valid primary.
func DecodeObservations(cells []WireCell) ObservationSet {
	observations := make(ObservationSet, 0, len(cells))
	for _, c := range cells {
		observations = append(observations, c.Observation())
	}
	return observations
}

// Observation converts the wire cell into the matching observation variant.
// Unrecognized types become an UnknownObservation, known types missing
// their identity fields an IncompleteObservation.
func (c WireCell) Observation() RawObservation {
	kind := strings.ToLower(strings.TrimSpace(c.Type))
	incomplete := func(reason string) RawObservation {
		return IncompleteObservation{Kind: kind, Registered: c.Registered, Reason: reason}
	}

	switch Technology(kind) {
	case "":
		return incomplete("cell type is empty")
	case TechnologyLTE:
		if c.CI == nil || c.TAC == nil {
			return incomplete("lte cell requires ci and tac")
		}
		return LTEObservation{CI: *c.CI, TAC: *c.TAC, PLMN: c.plmn(), Registered: c.Registered}
	case TechnologyGSM:
		if c.CID == nil || c.LAC == nil {
			return incomplete("gsm cell requires cid and lac")
		}
		return GSMObservation{CID: *c.CID, LAC: *c.LAC, PLMN: c.plmn(), Registered: c.Registered}
	case TechnologyWCDMA:
		if c.CID == nil || c.LAC == nil {
			return incomplete("wcdma cell requires cid and lac")
		}
		return WCDMAObservation{CID: *c.CID, LAC: *c.LAC, PLMN: c.plmn(), Registered: c.Registered}
	default:
		return UnknownObservation{Kind: kind, Registered: c.Registered}
	}
}

// plmn prefers the string representation of each code and falls back to
// the legacy integer.
func (c WireCell) plmn() PLMN {
	if c.MCCString != nil && c.MNCString != nil {
		return PLMNFromStrings(*c.MCCString, *c.MNCString)
	}
	if c.MCCString == nil && c.MNCString == nil && c.MCC != nil && c.MNC != nil {
		return PLMNFromLegacy(*c.MCC, *c.MNC)
	}
	return PLMN{MCC: operatorCode(c.MCCString, c.MCC), MNC: operatorCode(c.MNCString, c.MNC)}
}

func operatorCode(s *string, legacy *int) string {
	switch {
	case s != nil:
		return *s
	case legacy != nil:
		return strconv.Itoa(*legacy)
	default:
		return ""
	}
}
