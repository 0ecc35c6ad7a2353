package sim

import "github.com/banshee-data/qgclink/internal/autopilot"

// Parameter module names.
const (
	ModuleController = "controller"
	ModuleHelicopter = "helicopter"
)

// ControllerDefaults are the gains seeded into an empty parameter store.
func ControllerDefaults() []autopilot.Parameter {
	c := autopilot.ComponentController
	return []autopilot.Parameter{
		{ComponentID: c, Name: "ROLL_KP", Value: 0.42},
		{ComponentID: c, Name: "ROLL_KI", Value: 0.05},
		{ComponentID: c, Name: "ROLL_KD", Value: 0.11},
		{ComponentID: c, Name: "PITCH_KP", Value: 0.40},
		{ComponentID: c, Name: "PITCH_KI", Value: 0.05},
		{ComponentID: c, Name: "PITCH_KD", Value: 0.10},
		{ComponentID: c, Name: "YAW_KP", Value: 0.80},
		{ComponentID: c, Name: "POS_X_KP", Value: 0.15},
		{ComponentID: c, Name: "POS_Y_KP", Value: 0.15},
		{ComponentID: c, Name: "POS_Z_KP", Value: 0.30},
		{ComponentID: c, Name: "SBF_LAMBDA", Value: 1.20},
	}
}

// HelicopterDefaults are the airframe parameters seeded into an empty store.
func HelicopterDefaults() []autopilot.Parameter {
	c := autopilot.ComponentHelicopter
	return []autopilot.Parameter{
		{ComponentID: c, Name: "MASS", Value: 8.2},
		{ComponentID: c, Name: "MAIN_HUB_OFFSET", Value: 0.32},
		{ComponentID: c, Name: "TAIL_HUB_OFFSET", Value: 1.05},
		{ComponentID: c, Name: "ROTOR_DIAMETER", Value: 1.8},
		{ComponentID: c, Name: "GEAR_RATIO", Value: gearRatio},
	}
}
