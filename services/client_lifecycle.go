package services

import "time"

// ResolveLifecycleDates applies the sticky-date rules for the contract and
// closing timestamps.
//
// contract_signed_at is stamped the first time contract_signed flips to true
// and kept forever after, even if the box is later unchecked. closed_at is
// stamped the first time both contract_signed and work_completed are true
// together; unchecking either box later does not erase it. Only an explicit
// reopen clears these values.
func ResolveLifecycleDates(contractSigned, workCompleted bool, existingSignedAt, existingClosedAt *time.Time, now time.Time) (signedAt, closedAt *time.Time) {
	signedAt = existingSignedAt
	if contractSigned && signedAt == nil {
		t := now
		signedAt = &t
	}

	closedAt = existingClosedAt
	if contractSigned && workCompleted && closedAt == nil {
		t := now
		closedAt = &t
	}
	return signedAt, closedAt
}
