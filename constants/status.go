package constants

// ScanStatus is the caller-visible outcome of one card extraction.
type ScanStatus string

// Stable values (store these exact strings in the DB).
const (
	ScanStatusOK          ScanStatus = "OK"           // extraction succeeded with a confident record
	ScanStatusNeedsReview ScanStatus = "NEEDS_REVIEW" // extraction succeeded but the record scored low
	ScanStatusFailed      ScanStatus = "FAILED"       // every recognition pass failed
)

// ReviewThreshold is the draft score below which a successful extraction is
// labeled NEEDS_REVIEW. The score is a heuristic ranking, not a probability.
const ReviewThreshold = 60

// StatusForScore maps a best-draft score to a scan status.
func StatusForScore(score int) ScanStatus {
	if score < ReviewThreshold {
		return ScanStatusNeedsReview
	}
	return ScanStatusOK
}
