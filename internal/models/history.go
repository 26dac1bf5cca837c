package models

import "time"

// Axes is one 3-axis reading of a motion sensor
type Axes [3]int

// MotionSample is one reading of all three motion sensors
type MotionSample struct {
	Timestamp time.Time `json:"timestamp"`
	MPU1      Axes      `json:"mpu1"`
	MPU2      Axes      `json:"mpu2"`
	MPU3      Axes      `json:"mpu3"`
}

// MotionReading is the /v1/mpu payload: the three sensors without a timestamp
type MotionReading struct {
	MPU1 Axes `json:"mpu1"`
	MPU2 Axes `json:"mpu2"`
	MPU3 Axes `json:"mpu3"`
}

// Reading drops the timestamp
func (s MotionSample) Reading() MotionReading {
	return MotionReading{MPU1: s.MPU1, MPU2: s.MPU2, MPU3: s.MPU3}
}
