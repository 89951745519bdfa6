package contract

import "errors"

// ErrActiveRequestExists is returned by CancellationRequestRepository.Create
// when the subscription already has a pending/processing/scheduled request.
// Raised by the storage-level unique constraint, so it is authoritative even
// under concurrent initiations.
var ErrActiveRequestExists = errors.New("an active cancellation request already exists for this subscription")
