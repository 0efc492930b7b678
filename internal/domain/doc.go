// Package domain models cellular network identity as reported by mobile
// devices and normalizes it into a single reporting schema.
//
// # Source Records
//
// A device's radio subsystem reports every cell it can currently see. Each
// report carries a technology tag and a technology-specific identity:
//
//	LTE:    ci  (28-bit cell identity), tac (16-bit tracking area code)
//	GSM:    cid (16-bit cell id),       lac (16-bit location area code)
//	WCDMA:  cid (28-bit UTRAN cell id), lac (16-bit location area code)
//
// Other technologies (CDMA, NR, TD-SCDMA, ...) are carried through as
// [UnknownObservation] so the caller can distinguish "no data" from
// "no normalization rule". Cells of a known technology that lack their
// identity fields become [IncompleteObservation]; neighbors are often
// reported that way, so they only fail normalization as the primary.
//
// # Operator Codes
//
// MCC and MNC are exposed by newer platforms as strings ("310", "026") and
// by older ones as integers (310, 26). The string form wins when present;
// otherwise the integer is rendered in decimal. Leading zeros are not
// restored, so "026" and 26 produce different MNCs. See [PLMNFromStrings]
// and [PLMNFromLegacy].
//
// # Primary Cell
//
// The primary cell is the first registered observation in report order,
// falling back to the first observation when none is registered. See
// [SelectPrimary].
//
// # Report IDs
//
// Published reports carry a deterministic SHA-256 based ID over
// device|technology|mcc|mnc|lac|id so that replays upsert rather than
// duplicate downstream. See [NewCellReport].
package domain
