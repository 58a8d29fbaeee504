package evaluation

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nimbushome/nimbus-core/internal/scenario"
	"github.com/nimbushome/nimbus-core/internal/weather"
)

// Evaluate reports whether a condition holds against a weather snapshot.
//
// The condition vocabulary is closed. Membership kinds (weather-id,
// weather-description) test whether the parsed literal appears in the
// observed set and ignore the operator. Scalar kinds (temperature,
// humidity, wind-speed, cloudiness) compare the observed value to the
// parsed literal with the operator; equality is exact, with no epsilon
// for floats. Sunrise and sunset compare now to the observed timestamp
// with the operator and leave the literal unused.
//
// Returns:
//   - ErrUnknownCondition if kind is outside the vocabulary
//   - ErrUnknownOperator if operator is not ">", "<", or "="
//   - ErrMalformedLiteral if literal does not parse to the kind's type
func Evaluate(kind, operator, literal string, snap *weather.Snapshot, now time.Time) (bool, error) {
	switch operator {
	case scenario.OperatorGreater, scenario.OperatorLess, scenario.OperatorEqual:
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownOperator, operator)
	}

	switch kind {
	case scenario.ConditionWeatherID:
		id, err := strconv.Atoi(literal)
		if err != nil {
			return false, fmt.Errorf("%w: %q is not an integer weather id", ErrMalformedLiteral, literal)
		}
		for _, observed := range snap.WeatherIDs {
			if observed == id {
				return true, nil
			}
		}
		return false, nil

	case scenario.ConditionWeatherDescription:
		for _, observed := range snap.WeatherDescriptions {
			if observed == literal {
				return true, nil
			}
		}
		return false, nil

	case scenario.ConditionTemperature:
		value, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a numeric temperature", ErrMalformedLiteral, literal)
		}
		return compareFloats(snap.Temperature, value, operator), nil

	case scenario.ConditionHumidity:
		value, err := strconv.Atoi(literal)
		if err != nil {
			return false, fmt.Errorf("%w: %q is not an integer humidity", ErrMalformedLiteral, literal)
		}
		return compareInts(snap.Humidity, value, operator), nil

	case scenario.ConditionWindSpeed:
		value, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a numeric wind speed", ErrMalformedLiteral, literal)
		}
		return compareFloats(snap.WindSpeed, value, operator), nil

	case scenario.ConditionCloudiness:
		value, err := strconv.Atoi(literal)
		if err != nil {
			return false, fmt.Errorf("%w: %q is not an integer cloudiness", ErrMalformedLiteral, literal)
		}
		return compareInts(snap.Cloudiness, value, operator), nil

	case scenario.ConditionSunrise:
		return compareTimes(now, snap.Sunrise, operator), nil

	case scenario.ConditionSunset:
		return compareTimes(now, snap.Sunset, operator), nil

	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownCondition, kind)
	}
}

func compareFloats(observed, literal float64, operator string) bool {
	switch operator {
	case scenario.OperatorGreater:
		return observed > literal
	case scenario.OperatorLess:
		return observed < literal
	default:
		return observed == literal
	}
}

func compareInts(observed, literal int, operator string) bool {
	switch operator {
	case scenario.OperatorGreater:
		return observed > literal
	case scenario.OperatorLess:
		return observed < literal
	default:
		return observed == literal
	}
}

func compareTimes(now, observed time.Time, operator string) bool {
	switch operator {
	case scenario.OperatorGreater:
		return now.After(observed)
	case scenario.OperatorLess:
		return now.Before(observed)
	default:
		return now.Equal(observed)
	}
}
