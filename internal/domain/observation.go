package domain

import "strconv"

// Technology identifies the radio access technology of an observation.
type Technology string

const (
	TechnologyLTE   Technology = "lte"
	TechnologyGSM   Technology = "gsm"
	TechnologyWCDMA Technology = "wcdma"
)

// PLMN holds the operator codes of a cell as decimal strings.
type PLMN struct {
	MCC string
	MNC string
}

// PLMNFromStrings builds a PLMN from the direct string representation.
func PLMNFromStrings(mcc, mnc string) PLMN {
	return PLMN{MCC: mcc, MNC: mnc}
}

// PLMNFromLegacy builds a PLMN from legacy numeric fields. Values are
// rendered in decimal without zero padding.
func PLMNFromLegacy(mcc, mnc int) PLMN {
	return PLMN{MCC: strconv.Itoa(mcc), MNC: strconv.Itoa(mnc)}
}

// RawObservation is one visible cell as reported by a device. The set of
// implementations is closed: LTEObservation, GSMObservation,
// WCDMAObservation, UnknownObservation and IncompleteObservation.
type RawObservation interface {
	Technology() Technology
	IsRegistered() bool

	observation()
}

// LTEObservation is an LTE cell identity.
type LTEObservation struct {
	CI         uint64
	TAC        uint32
	PLMN       PLMN
	Registered bool
}

// GSMObservation is a GSM cell identity.
type GSMObservation struct {
	CID        uint64
	LAC        uint32
	PLMN       PLMN
	Registered bool
}

// WCDMAObservation is a WCDMA (UMTS) cell identity.
type WCDMAObservation struct {
	CID        uint64
	LAC        uint32
	PLMN       PLMN
	Registered bool
}

// UnknownObservation is a cell of a technology without a normalization rule.
type UnknownObservation struct {
	Kind       string
	Registered bool
}

// IncompleteObservation is a cell of a known technology that arrived without
// its identity fields. Neighbor cells are often reported this way; it only
// matters when the cell is the primary.
type IncompleteObservation struct {
	Kind       string
	Registered bool
	Reason     string
}

func (LTEObservation) Technology() Technology   { return TechnologyLTE }
func (GSMObservation) Technology() Technology   { return TechnologyGSM }
func (WCDMAObservation) Technology() Technology { return TechnologyWCDMA }
func (o UnknownObservation) Technology() Technology {
	return Technology(o.Kind)
}
func (o IncompleteObservation) Technology() Technology {
	return Technology(o.Kind)
}

func (o LTEObservation) IsRegistered() bool        { return o.Registered }
func (o GSMObservation) IsRegistered() bool        { return o.Registered }
func (o WCDMAObservation) IsRegistered() bool      { return o.Registered }
func (o UnknownObservation) IsRegistered() bool    { return o.Registered }
func (o IncompleteObservation) IsRegistered() bool { return o.Registered }

func (LTEObservation) observation()        {}
func (GSMObservation) observation()        {}
func (WCDMAObservation) observation()      {}
func (UnknownObservation) observation()    {}
func (IncompleteObservation) observation() {}

// ObservationSet is every cell visible to a device at one instant, in the
// order the radio reported them.
type ObservationSet []RawObservation

// CanonicalCellRecord is the technology-independent identity of a cell.
type CanonicalCellRecord struct {
	ID                uint64 `json:"id"`
	LocationAreaCode  uint32 `json:"lac"`
	MobileCountryCode string `json:"mcc"`
	MobileNetworkCode string `json:"mnc"`
}

// Map returns the record as a flat key/value mapping {id, lac, mcc, mnc}.
func (r CanonicalCellRecord) Map() map[string]any {
	return map[string]any{
		"id":  r.ID,
		"lac": r.LocationAreaCode,
		"mcc": r.MobileCountryCode,
		"mnc": r.MobileNetworkCode,
	}
}
