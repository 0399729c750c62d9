package robot

// Device is a hardware handle that may or may not be connected.
// The zero value is an absent device.
type Device[T any] struct {
	dev     T
	present bool
}

// Attach returns a present device wrapping dev.
func Attach[T any](dev T) Device[T] {
	return Device[T]{dev: dev, present: true}
}

// Get returns the device and whether it is present.
func (d Device[T]) Get() (T, bool) {
	return d.dev, d.present
}

// Present reports whether the device is connected.
func (d Device[T]) Present() bool {
	return d.present
}

// Or returns d when it is present and fallback otherwise.
func (d Device[T]) Or(fallback Device[T]) Device[T] {
	if d.present {
		return d
	}
	return fallback
}
