package domain

import "fmt"

// SelectPrimary returns the first registered observation, or the first
// observation when none is registered. A nil entry at index 0 with nothing
// registered counts as no data and yields ErrNoDataAvailable.
func SelectPrimary(observations ObservationSet) (RawObservation, error) {
	if len(observations) == 0 {
		return nil, ErrNoDataAvailable
	}
	for _, obs := range observations {
		if obs != nil && obs.IsRegistered() {
			return obs, nil
		}
	}
	if observations[0] == nil {
		return nil, ErrNoDataAvailable
	}
	return observations[0], nil
}

// NormalizeObservation maps a single observation to its canonical record.
func NormalizeObservation(obs RawObservation) (CanonicalCellRecord, error) {
	switch o := obs.(type) {
	case LTEObservation:
		return canonical(o.CI, o.TAC, o.PLMN), nil
	case GSMObservation:
		return canonical(o.CID, o.LAC, o.PLMN), nil
	case WCDMAObservation:
		return canonical(o.CID, o.LAC, o.PLMN), nil
	case UnknownObservation:
		return CanonicalCellRecord{}, fmt.Errorf("%w: %q", ErrUnsupportedTechnology, o.Kind)
	case IncompleteObservation:
		return CanonicalCellRecord{}, &InvalidSnapshotError{Reason: "primary cell: " + o.Reason}
	case nil:
		return CanonicalCellRecord{}, ErrNoDataAvailable
	default:
		return CanonicalCellRecord{}, fmt.Errorf("%w: %T", ErrUnsupportedTechnology, obs)
	}
}

// Normalize selects the primary cell of observations and returns its
// canonical record. It fails with ErrNoDataAvailable for an empty set,
// ErrUnsupportedTechnology when the primary has no normalization rule, and
// an *InvalidSnapshotError when the primary lacks its identity fields.
func Normalize(observations ObservationSet) (CanonicalCellRecord, error) {
	primary, err := SelectPrimary(observations)
	if err != nil {
		return CanonicalCellRecord{}, err
	}
	return NormalizeObservation(primary)
}

func canonical(id uint64, areaCode uint32, plmn PLMN) CanonicalCellRecord {
	return CanonicalCellRecord{
		ID:                id,
		LocationAreaCode:  areaCode,
		MobileCountryCode: plmn.MCC,
		MobileNetworkCode: plmn.MNC,
	}
}
