package homeassistant

import "fmt"

const (
	MANUFACTURER_NAME = "TSME"
	discoveryPrefix   = "homeassistant/sensor/tsme_exporter"
)

type StateClass string

const (
	TotalIncreasingStateClass StateClass = "total_increasing"
)

type DeviceClass string

const (
	WaterDeviceClass DeviceClass = "water"
)

type Icon string

const (
	WaterIcon Icon = "mdi:water"
)

type Unit string

const (
	CubicMeterUnit Unit = "m³"
)

type DeviceConfig struct {
	Identifiers  []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer"`
	Name         string   `json:"name"`
}

type SensorConfig struct {
	DeviceClass       DeviceClass  `json:"device_class"`
	EnabledByDefault  bool         `json:"enabled_by_default"`
	Icon              Icon         `json:"icon"`
	Name              string       `json:"name"`
	StateClass        StateClass   `json:"state_class"`
	UnitOfMeasurement Unit         `json:"unit_of_measurement"`
	StateTopic        string       `json:"state_topic"`
	UniqueID          string       `json:"unique_id"`
	Device            DeviceConfig `json:"device"`
}

func getWaterSensorConfig(meterID string, stateTopic string) SensorConfig {
	return SensorConfig{
		DeviceClass:       WaterDeviceClass,
		Name:              "water_meter",
		EnabledByDefault:  true,
		Icon:              WaterIcon,
		StateClass:        TotalIncreasingStateClass,
		UnitOfMeasurement: CubicMeterUnit,
		StateTopic:        stateTopic,
		UniqueID:          fmt.Sprintf("tsme_%s_meter", meterID),
		Device: DeviceConfig{
			Identifiers: []string{
				meterID,
			},
			Manufacturer: MANUFACTURER_NAME,
			Name:         fmt.Sprintf("Water meter %s", meterID),
		},
	}
}

type SensorTopics struct {
	Config string
	State  string
}

func buildSensorTopics(meterID string) SensorTopics {
	baseTopic := fmt.Sprintf("%s/water_meter_%s", discoveryPrefix, meterID)

	return SensorTopics{
		Config: baseTopic + "/config",
		State:  baseTopic + "/state",
	}
}
