package entities

import (
	"time"
)

// IdempotencyRecord tracks one idempotency key through its lifecycle:
//
//	NEW -> LOCKED -> SETTLED
//
// A record with a stored response is settled and replays forever. A locked
// record whose lease expired with no response is reclaimable by any caller.
type IdempotencyRecord struct {
	key           string
	requestHash   string
	responseCode  *int
	responseBody  []byte // nil until settled
	recoveryPoint *string
	lockedAt      *time.Time
	lockedBy      *string
	expiresAt     *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

// NewIdempotencyRecord creates a freshly locked record for a new key.
func NewIdempotencyRecord(key, requestHash, owner string, ttl time.Duration) *IdempotencyRecord {
	now := time.Now().UTC()
	expires := now.Add(ttl)
	return &IdempotencyRecord{
		key:         key,
		requestHash: requestHash,
		lockedAt:    &now,
		lockedBy:    &owner,
		expiresAt:   &expires,
		createdAt:   now,
		updatedAt:   now,
	}
}

// ReconstructIdempotencyRecord rebuilds a record from stored data.
func ReconstructIdempotencyRecord(
	key, requestHash string,
	responseCode *int,
	responseBody []byte,
	recoveryPoint *string,
	lockedAt *time.Time,
	lockedBy *string,
	expiresAt *time.Time,
	createdAt, updatedAt time.Time,
) *IdempotencyRecord {
	return &IdempotencyRecord{
		key:           key,
		requestHash:   requestHash,
		responseCode:  responseCode,
		responseBody:  responseBody,
		recoveryPoint: recoveryPoint,
		lockedAt:      lockedAt,
		lockedBy:      lockedBy,
		expiresAt:     expiresAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// IsSettled reports whether a terminal response has been stored.
func (r *IdempotencyRecord) IsSettled() bool {
	return r.responseBody != nil
}

// IsExpired reports whether the lock lease has lapsed without a response.
// Expired unsettled records may be reclaimed with any payload.
func (r *IdempotencyRecord) IsExpired(now time.Time) bool {
	return !r.IsSettled() && r.expiresAt != nil && now.After(*r.expiresAt)
}

// MatchesHash reports whether the stored request hash equals hash.
func (r *IdempotencyRecord) MatchesHash(hash string) bool {
	return r.requestHash == hash
}

// RefreshLock extends the lease for a retry by the same caller.
func (r *IdempotencyRecord) RefreshLock(owner string, ttl time.Duration) {
	now := time.Now().UTC()
	expires := now.Add(ttl)
	r.lockedAt = &now
	r.lockedBy = &owner
	r.expiresAt = &expires
	r.updatedAt = now
}

// Reclaim takes over an expired unsettled record with a new payload.
func (r *IdempotencyRecord) Reclaim(requestHash, owner string, ttl time.Duration) {
	r.requestHash = requestHash
	r.responseCode = nil
	r.responseBody = nil
	r.recoveryPoint = nil
	r.RefreshLock(owner, ttl)
}

// Settle stores the terminal response and clears the lock fields.
// A settled record replays (code, body) verbatim on every later acquire.
func (r *IdempotencyRecord) Settle(code int, body []byte, recoveryPoint *string) {
	r.responseCode = &code
	r.responseBody = body
	r.recoveryPoint = recoveryPoint
	r.lockedAt = nil
	r.lockedBy = nil
	r.updatedAt = time.Now().UTC()
}

func (r *IdempotencyRecord) Key() string            { return r.key }
func (r *IdempotencyRecord) RequestHash() string    { return r.requestHash }
func (r *IdempotencyRecord) ResponseCode() *int     { return r.responseCode }
func (r *IdempotencyRecord) ResponseBody() []byte   { return r.responseBody }
func (r *IdempotencyRecord) RecoveryPoint() *string { return r.recoveryPoint }
func (r *IdempotencyRecord) LockedAt() *time.Time   { return r.lockedAt }
func (r *IdempotencyRecord) LockedBy() *string      { return r.lockedBy }
func (r *IdempotencyRecord) ExpiresAt() *time.Time  { return r.expiresAt }
func (r *IdempotencyRecord) CreatedAt() time.Time   { return r.createdAt }
func (r *IdempotencyRecord) UpdatedAt() time.Time   { return r.updatedAt }
