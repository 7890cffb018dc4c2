package types

// Storage keys, one per record kind. The version segment lets a future
// incompatible schema live beside the current one.
const (
	MealsKey    = "nutrifit.v1.meals"
	WorkoutsKey = "nutrifit.v1.workouts"
)

// StorageKey returns the persistence key for a record kind.
func StorageKey(k Kind) (string, error) {
	switch k {
	case KindMeal:
		return MealsKey, nil
	case KindWorkout:
		return WorkoutsKey, nil
	default:
		return "", ErrInvalidKind
	}
}

// KVStore is the durable key-value contract the record store persists
// through. Values are opaque serialized sequences.
type KVStore interface {
	// Get returns the value stored under key. ok is false when the key
	// has never been written or was removed.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, overwriting any prior value.
	Set(key, value string) error

	// Remove clears key. Removing an absent key succeeds.
	Remove(key string) error
}
