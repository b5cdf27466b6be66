// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package model

import "time"

// Every *Config/*State pair below mirrors one row of the data model
// table in spec.md §3. Config items are slowly changing and live in
// *pool-config*; State items shadow them in *pool-state*.

type BodyType int

const (
	BodyPool BodyType = iota
	BodySpa
	BodyAuxiliary
)

type HeatMode int

const (
	HeatOff HeatMode = iota
	HeatHeater
	HeatSolarPreferred
	HeatSolarOnly
)

type BodyConfig struct {
	ID          int
	Name        string
	Type        BodyType
	Capacity    int
	HeatSources uint32 // bitmask of HeatMode bits the variant permits
}

func (c *BodyConfig) EntityID() int { return c.ID }

type BodyState struct {
	ID         int
	Temp       float64
	SetPoint   float64
	HeatMode   HeatMode
	HeatStatus bool
	IsOn       bool
	SolarTemp  float64
	Pending    bool
}

func (s *BodyState) EntityID() int { return s.ID }

type CircuitFunction int

const (
	CircuitGeneric CircuitFunction = iota
	CircuitPool
	CircuitSpa
	CircuitLight
	CircuitSpillway
)

type CircuitConfig struct {
	ID             int
	Name           string
	Function       CircuitFunction
	ShowInFeatures bool
	FreezeProtect  bool
	EggTimerMin    int
}

func (c *CircuitConfig) EntityID() int { return c.ID }

type CircuitState struct {
	ID            int
	IsOn          bool
	EndTime       time.Time
	LightingTheme int
	Pending       bool
}

func (s *CircuitState) EntityID() int { return s.ID }

type FeatureConfig struct {
	ID             int
	Name           string
	Function       CircuitFunction
	ShowInFeatures bool
}

func (c *FeatureConfig) EntityID() int { return c.ID }

type FeatureState struct {
	ID      int
	IsOn    bool
	EndTime time.Time
}

func (s *FeatureState) EntityID() int { return s.ID }

type PumpType int

const (
	PumpRelay PumpType = iota
	PumpSingleSpeed
	PumpDualSpeed
	PumpVS
	PumpVSF
	PumpVF
)

type PumpCircuitBinding struct {
	Circuit int
	Speed   int // rpm, when the pump is a speed-controlled type
	Flow    int // gpm, when the pump is a flow-controlled type
}

type PumpConfig struct {
	ID       int
	Name     string
	Type     PumpType
	Address  int
	Circuits []PumpCircuitBinding
}

func (c *PumpConfig) EntityID() int { return c.ID }

type PumpState struct {
	ID         int
	RPM        int
	Watts      int
	Flow       int
	Status     string
	DriveState string
	Pending    bool
}

func (s *PumpState) EntityID() int { return s.ID }

type HeaterType int

const (
	HeaterGas HeaterType = iota
	HeaterSolar
	HeaterHeatPump
	HeaterUltratemp
)

type HeaterConfig struct {
	ID        int
	Name      string
	Type      HeaterType
	BodyMask  uint32
	Priority  int
	Cooldown  time.Duration
}

func (c *HeaterConfig) EntityID() int { return c.ID }

type HeaterState struct {
	ID        int
	IsOn      bool
	StartTime time.Time
	EndTime   time.Time
}

func (s *HeaterState) EntityID() int { return s.ID }

type ChlorinatorConfig struct {
	ID              int
	Body            int
	PoolSetpoint    int // percent output
	SpaSetpoint     int
	SuperChlorHours int
	Type            string
}

func (c *ChlorinatorConfig) EntityID() int { return c.ID }

type ChlorinatorState struct {
	ID            int
	CurrentOutput int
	TargetOutput  int
	SaltLevel     int
	SaltRequired  bool
	SuperChlor    bool
	Status        string
}

func (s *ChlorinatorState) EntityID() int { return s.ID }

type ChemControllerType int

const (
	ChemIntelliChem ChemControllerType = iota
	ChemHomegrown
)

type ChemControllerConfig struct {
	ID           int
	Type         ChemControllerType
	Body         int
	PHSetpoint   float64
	ORPSetpoint  float64
	PHDoseLimit  float64
	ORPDoseLimit float64
	PHTankVolume float64
	ORPTankVolume float64
	LSITarget    float64
}

func (c *ChemControllerConfig) EntityID() int { return c.ID }

type DosingStatus struct {
	Active    bool
	StartTime time.Time
	VolumeML  float64
	Remaining float64
}

type ChemControllerState struct {
	ID          int
	PHLevel     float64
	ORPLevel    float64
	PHTankLevel float64
	ORPTankLevel float64
	PHDosing    DosingStatus
	ORPDosing   DosingStatus
	Alarms      []string
	Warnings    []string
}

func (s *ChemControllerState) EntityID() int { return s.ID }

type ScheduleType int

const (
	ScheduleRunOnce ScheduleType = iota
	ScheduleRepeating
)

type ScheduleConfig struct {
	ID           int
	Circuit      int
	StartTime    int // minutes since midnight [0,1440)
	EndTime      int
	WrapsMidnight bool
	DaysMask     uint8
	Type         ScheduleType
	HeatMode     HeatMode
	SetPoint     float64
}

func (c *ScheduleConfig) EntityID() int { return c.ID }

type ScheduleState struct {
	ID              int
	IsOn            bool
	NextTriggerTime time.Time
}

func (s *ScheduleState) EntityID() int { return s.ID }

type ValveConfig struct {
	ID        int
	Circuit   int
	Name      string
	IsIntake  bool
	IsReturn  bool
}

func (c *ValveConfig) EntityID() int { return c.ID }

type ValveState struct {
	ID       int
	IsOn     bool
	Position int
}

func (s *ValveState) EntityID() int { return s.ID }

type PressureUnit int

const (
	PressurePSI PressureUnit = iota
	PressureKPa
)

type FilterConfig struct {
	ID            int
	Body          int
	FilterType    string
	RefPressure   float64
	PressureUnits PressureUnit
}

func (c *FilterConfig) EntityID() int { return c.ID }

type FilterState struct {
	ID              int
	Pressure        float64
	CleanPercentage float64
}

func (s *FilterState) EntityID() int { return s.ID }

type GroupCircuitBinding struct {
	Circuit      int
	DesiredState bool
	SwimDelay    time.Duration
}

type GroupKind int

const (
	GroupCircuitGroup GroupKind = iota
	GroupLightGroup
)

type GroupConfig struct {
	ID       int
	Name     string
	Kind     GroupKind
	Circuits []GroupCircuitBinding
}

func (c *GroupConfig) EntityID() int { return c.ID }

type GroupState struct {
	ID            int
	IsOn          bool
	EndTime       time.Time
	LightingTheme int
}

func (s *GroupState) EntityID() int { return s.ID }

type CoverConfig struct {
	ID   int
	Body int
	Name string
}

func (c *CoverConfig) EntityID() int { return c.ID }

type CoverState struct {
	ID       int
	IsClosed bool
}

func (s *CoverState) EntityID() int { return s.ID }

// EquipmentStatus mirrors the singleton's status{val,name,percent}
// shape named in spec.md §3.
type EquipmentStatus struct {
	Val     int
	Name    string
	Percent int
}

// Equipment is the process-wide singleton describing the controller
// itself. There is exactly one, so it is not a Collection member.
type Equipment struct {
	Model          string
	ControllerType string
	Firmware       string
	SoftwareVersion string
	Status         EquipmentStatus
	Mode           string
	BootTime       time.Time
}

func (e *Equipment) EntityID() int { return 0 }
