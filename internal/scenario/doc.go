// Package scenario manages weather-driven status rules.
//
// A Rule binds a device type to a weather condition: when the condition
// holds for a device's local weather, the device should move to the rule's
// NewStatus. Rules reference a closed vocabulary of condition kinds
// (temperature, humidity, wind speed, cloudiness, weather id and
// description codes, and sunrise/sunset) and a comparison operator.
//
// Condition literals are stored as opaque strings and validated only
// structurally at create time. Type errors (a non-numeric temperature
// literal, say) surface when the rule is evaluated, so a bad rule never
// blocks unrelated rules from being stored or applied.
//
// Rules are served through the Lookup interface. The local Registry fronts
// a SQLite Repository with a per-device-type cache; the HTTP Client talks
// to an external rule service and forwards the caller's bearer token.
package scenario
