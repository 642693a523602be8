package service

// Storage is durable client storage: the cookie jar of a browser context,
// or a file on disk for command-line use. Values survive a reload.
type Storage interface {
	// Get returns the stored value and whether the key is present.
	Get(key string) (string, bool)

	// Set stores value under key, overwriting any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
}
