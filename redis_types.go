package main

// Redis message types for controller status updates
type RedisActuatorOutput struct {
	Steer          float64
	SteerOutputCan int
}

type RedisControllerInfo struct {
	RunID             string
	Generation        string
	TorqueInterceptor bool
	RadarInterceptor  bool
	PeriodMs          int64
}
