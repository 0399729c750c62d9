package robot

// Default drive base dimensions in millimetres.
const (
	DefaultWheelDiameterMM = 56
	DefaultAxleTrackMM     = 80
)

// Specs holds the physical dimensions of the drive base.
type Specs struct {
	WheelDiameterMM float64 `json:"wheel_diameter_mm"`
	AxleTrackMM     float64 `json:"axle_track_mm"`
}

// DefaultSpecs returns the dimensions of the standard drive base.
func DefaultSpecs() Specs {
	return Specs{
		WheelDiameterMM: DefaultWheelDiameterMM,
		AxleTrackMM:     DefaultAxleTrackMM,
	}
}

// Robot bundles the hardware handles of one robot. Any handle may be absent;
// callers resolve the ones they need with Wheels and Sensors before moving.
type Robot struct {
	LeftWheel       Device[Motor]
	RightWheel      Device[Motor]
	LeftSensor      Device[ReflectanceSensor]
	RightSensor     Device[ReflectanceSensor]
	LeftAttachment  Device[Motor]
	RightAttachment Device[Motor]
	Specs           Specs
}

// Wheels returns both drive motors, or a MissingHardwareError naming the
// first absent one.
func (r *Robot) Wheels() (left, right Motor, err error) {
	left, ok := r.LeftWheel.Get()
	if !ok {
		return nil, nil, &MissingHardwareError{Component: "left_wheel"}
	}
	right, ok = r.RightWheel.Get()
	if !ok {
		return nil, nil, &MissingHardwareError{Component: "right_wheel"}
	}
	return left, right, nil
}

// Sensors returns both reflectance sensors, or a MissingHardwareError naming
// the first absent one.
func (r *Robot) Sensors() (left, right ReflectanceSensor, err error) {
	return ResolveSensors(r.LeftSensor, r.RightSensor)
}

// ResolveSensors unwraps a pair of sensor handles.
func ResolveSensors(l, r Device[ReflectanceSensor]) (left, right ReflectanceSensor, err error) {
	left, ok := l.Get()
	if !ok {
		return nil, nil, &MissingHardwareError{Component: "left_sensor"}
	}
	right, ok = r.Get()
	if !ok {
		return nil, nil, &MissingHardwareError{Component: "right_sensor"}
	}
	return left, right, nil
}

// Attachment returns the attachment motor on side, or a MissingHardwareError
// when none is bound.
func (r *Robot) Attachment(side Side) (Motor, error) {
	d := r.RightAttachment
	if side == Left {
		d = r.LeftAttachment
	}
	m, ok := d.Get()
	if !ok {
		return nil, &MissingHardwareError{Component: string(side) + "_attachment"}
	}
	return m, nil
}
