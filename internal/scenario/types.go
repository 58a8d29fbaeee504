package scenario

import (
	"time"

	"github.com/google/uuid"
)

// Condition kinds understood by the evaluator.
// The vocabulary is closed: anything else fails evaluation.
const (
	ConditionWeatherID          = "weather-id"
	ConditionWeatherDescription = "weather-description"
	ConditionTemperature        = "temperature"
	ConditionHumidity           = "humidity"
	ConditionWindSpeed          = "wind-speed"
	ConditionCloudiness         = "cloudiness"
	ConditionSunrise            = "sunrise"
	ConditionSunset             = "sunset"
)

// ConditionKinds lists every supported condition kind.
var ConditionKinds = []string{
	ConditionWeatherID,
	ConditionWeatherDescription,
	ConditionTemperature,
	ConditionHumidity,
	ConditionWindSpeed,
	ConditionCloudiness,
	ConditionSunrise,
	ConditionSunset,
}

// Comparison operators for scalar conditions.
const (
	OperatorGreater = ">"
	OperatorLess    = "<"
	OperatorEqual   = "="
)

// Operators lists every supported comparison operator.
var Operators = []string{OperatorGreater, OperatorLess, OperatorEqual}

// Rule is one weather-conditioned status rule.
//
// When the rule's condition holds against a weather snapshot, devices of
// the rule's type transition to NewStatus. WeatherCondition names the
// condition kind, ConditionValue is the comparison literal (parsed at
// evaluation time), and Operator selects the comparison for scalar and
// time-of-day kinds. Membership kinds (weather-id, weather-description)
// ignore the operator.
type Rule struct {
	ID               string    `json:"id"`
	DeviceTypeID     string    `json:"device_type_id"`
	WeatherCondition string    `json:"weather_condition"`
	ConditionValue   string    `json:"condition_value"`
	Operator         string    `json:"operator"`
	NewStatus        string    `json:"new_status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Summary renders the rule's condition as a human-readable cause string,
// e.g. "temperature > 25.0". Recorded in the status change audit trail.
func (r *Rule) Summary() string {
	return r.WeatherCondition + " " + r.Operator + " " + r.ConditionValue
}

// idPrefixLen is the number of UUID characters kept in generated IDs.
const idPrefixLen = 8

// GenerateID creates a new unique scenario rule ID.
func GenerateID() string {
	return "scn-" + uuid.NewString()[:idPrefixLen]
}
